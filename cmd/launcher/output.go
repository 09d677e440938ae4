package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// render writes v as JSON or YAML, or calls tableFn for the default table output.
func render(v any, tableFn func(tw table.Writer)) error {
	return renderTo(os.Stdout, viper.GetString("output"), v, tableFn)
}

func renderTo(w io.Writer, format string, v any, tableFn func(tw table.Writer)) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "", "table":
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tableFn(tw)
		tw.Render()
		return nil
	}
	return fmt.Errorf("unknown output format %q", format)
}
