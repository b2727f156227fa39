package auditor

import (
	"fmt"

	"rule628/internal/parser"
)

// accessor is the released replacement for reading one table.
type accessor struct {
	method  string
	example string
}

var accessors = map[parser.Table]accessor{
	parser.T881: {
		method: "cl_fins_acdoc_util=>get_t881_emu",
		example: "  DATA(ls_t881) = VALUE t881( ).\n" +
			"  cl_fins_acdoc_util=>get_t881_emu(\n" +
			"    EXPORTING iv_rldnr = lv_rldnr\n" +
			"    IMPORTING es_t881  = ls_t881\n" +
			"    EXCEPTIONS not_found = 1 OTHERS = 2 ).\n",
	},
	parser.T881T: {
		method: "cl_fins_acdoc_util=>get_t881t_emu",
		example: "  DATA(ls_t881t) = VALUE t881t( ).\n" +
			"  cl_fins_acdoc_util=>get_t881t_emu(\n" +
			"    EXPORTING iv_rldnr = lv_rldnr iv_spras = sy-langu\n" +
			"    IMPORTING es_t881t = ls_t881t\n" +
			"    EXCEPTIONS not_found = 1 OTHERS = 2 ).\n",
	},
	parser.T882G: {
		method: "cl_fins_acdoc_util=>get_t882g_emu",
		example: "  DATA(ls_t882g) = VALUE t882g( ).\n" +
			"  cl_fins_acdoc_util=>get_t882g_emu(\n" +
			"    EXPORTING iv_bukrs = lv_bukrs iv_rldnr = lv_rldnr\n" +
			"    IMPORTING es_t882g = ls_t882g\n" +
			"    EXCEPTIONS not_found = 1 OTHERS = 2 ).\n",
	},
}

func accessorFor(t parser.Table) accessor {
	return accessors[t]
}

func readSuggestion(t parser.Table) string {
	acc := accessorFor(t)
	if acc.example == "" {
		return fmt.Sprintf("Use %s.", acc.method)
	}
	return fmt.Sprintf("Replace direct read of %s with %s.\n\nExample:\n%s", t.Upper(), acc.method, acc.example)
}

// There is no drop-in replacement for writes, only a redesign.
func writeSuggestion(t parser.Table) string {
	return fmt.Sprintf("Direct writes to %s are disallowed in S/4HANA. "+
		"These tables are obsolete customizing; redesign to use the supported "+
		"configuration/APIs and remove the DML.", t.Upper())
}
