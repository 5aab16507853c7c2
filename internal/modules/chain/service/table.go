package service

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"option_chain/internal/models"
)

const minMark = "*"

// Table рисует view моноширинной таблицей: CE | strike | PE | результат.
// Строки с минимальным результатом помечаются звёздочкой.
func Table(view models.View) string {
	var buf bytes.Buffer

	if view.Empty != nil {
		buf.WriteString(view.Empty.Message)
		if view.Empty.LoginURL != "" {
			fmt.Fprintf(&buf, "\nLogin: %s", view.Empty.LoginURL)
		}
		return buf.String()
	}

	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OI\tVolume\tLTP\tStrike\tLTP\tVolume\tOI\tResult\t")
	for _, r := range view.Rows {
		res := r.Display
		if r.IsMin {
			res += minMark
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			legField(r.CE, models.FieldOI),
			legField(r.CE, models.FieldVolume),
			legField(r.CE, models.FieldLTP),
			FormatNumber(r.Strike),
			legField(r.PE, models.FieldLTP),
			legField(r.PE, models.FieldVolume),
			legField(r.PE, models.FieldOI),
			res,
		)
	}
	_ = w.Flush()

	fmt.Fprintf(&buf, "formula: %s", view.Formula)
	if !view.Connected {
		buf.WriteString(" (disconnected)")
	}
	return buf.String()
}

func legField(e *models.Entry, name string) string {
	if e == nil {
		return models.DisplayNoValue
	}
	v, ok := e.Field(name)
	if !ok {
		return models.DisplayNoValue
	}
	return FormatNumber(v)
}
