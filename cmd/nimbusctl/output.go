package main

import (
	"os"

	"github.com/nimbus-iot/nimbusctl/pkg/render"
)

// output renders v as JSON when jsonOut is set, otherwise as a table.
func output(jsonOut bool, v any, headers []string, rows [][]string) error {
	if jsonOut {
		return render.JSON(os.Stdout, v)
	}
	return render.Table(os.Stdout, headers, rows)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
