package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"option_chain/internal/models"
)

func TestDecode_DataUpdate(t *testing.T) {
	frame := `{"event":"dataUpdate","data":{
		"CE":[{"symbol":"NIFTY22000CE","strike_price":22000,"option_type":"CE","ltp":120.5,"oi":10,"volume":3}],
		"PE":[{"symbol":"NIFTY22000PE","strike_price":22000,"option_type":"PE","ltp":80}]}}`

	msg, err := Decode([]byte(frame))
	require.NoError(t, err)

	assert.Equal(t, models.EventDataUpdate, msg.Event)
	require.Len(t, msg.Update.Calls, 1)
	require.Len(t, msg.Update.Puts, 1)
	assert.Equal(t, "NIFTY22000CE", msg.Update.Calls[0].Symbol)
	assert.Equal(t, 120.5, msg.Update.Calls[0].Quote[models.FieldLTP])
	_, ok := msg.Update.Puts[0].Field(models.FieldOI)
	assert.False(t, ok)
}

func TestDecode_MissingListsAreEmpty(t *testing.T) {
	for name, frame := range map[string]string{
		"no PE":      `{"event":"dataUpdate","data":{"CE":[{"symbol":"A","strike_price":1,"option_type":"CE","ltp":1}]}}`,
		"null CE":    `{"event":"dataUpdate","data":{"CE":null,"PE":[]}}`,
		"empty data": `{"event":"dataUpdate","data":{}}`,
		"no data":    `{"event":"dataUpdate"}`,
	} {
		t.Run(name, func(t *testing.T) {
			msg, err := Decode([]byte(frame))
			require.NoError(t, err)
			assert.Equal(t, models.EventDataUpdate, msg.Event)
			assert.Empty(t, msg.Update.Puts)
		})
	}
}

func TestDecode_DataWithoutEvent(t *testing.T) {
	msg, err := Decode([]byte(`{"data":{"CE":[{"symbol":"A","strike_price":1,"option_type":"CE","ltp":1}]}}`))
	require.NoError(t, err)
	assert.Equal(t, models.EventDataUpdate, msg.Event)
	assert.Equal(t, 1, msg.Update.Len())
}

func TestDecode_Resync(t *testing.T) {
	msg, err := Decode([]byte(`{"event":"resync"}`))
	require.NoError(t, err)
	assert.Equal(t, models.EventResync, msg.Event)
}

func TestDecode_Rejects(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)
	assert.Equal(t, "invalid", result(err))

	_, err = Decode([]byte(`{}`))
	assert.ErrorIs(t, err, ErrEmptyFrame)

	_, err = Decode([]byte(`{"event":"heartbeat"}`))
	assert.ErrorIs(t, err, ErrUnknownEvent)
	assert.Equal(t, "ignored", result(err))

	assert.Equal(t, "ok", result(nil))
}
