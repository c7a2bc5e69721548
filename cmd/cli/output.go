package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/itchyny/gojq"
	"gopkg.in/yaml.v3"
)

type outputFormat string

const (
	outputTable outputFormat = "table"
	outputJSON  outputFormat = "json"
	outputYAML  outputFormat = "yaml"
)

func parseOutputFormat(value string) (outputFormat, error) {
	switch format := outputFormat(strings.ToLower(value)); format {
	case "", outputTable:
		return outputTable, nil
	case outputJSON, outputYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format %q: expected table, json or yaml", value)
	}
}

// writeStructured writes value as JSON or YAML. A jq expression, when set,
// is applied to the JSON form first and every result is written.
func writeStructured(w io.Writer, format outputFormat, value any, expression string) error {
	if len(expression) > 0 {
		results, err := evaluateJQ(expression, value)
		if err != nil {
			return err
		}
		for _, result := range results {
			if err := encode(w, format, result); err != nil {
				return err
			}
		}
		return nil
	}
	return encode(w, format, value)
}

func encode(w io.Writer, format outputFormat, value any) error {
	switch format {
	case outputYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return encoder.Close()
	default:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
}

// evaluateJQ runs expression against the JSON form of value
func evaluateJQ(expression string, value any) ([]any, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jq expression: %s, error: %w", expression, err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %s, error: %w", expression, err)
	}

	// gojq only understands plain JSON values
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, err
	}

	var results []any
	iter := code.Run(input)
	for {
		result, ok := iter.Next()
		if !ok {
			break
		}
		if errVal, isErr := result.(error); isErr {
			return nil, fmt.Errorf("jq evaluation error: %w", errVal)
		}
		results = append(results, result)
	}

	return results, nil
}
