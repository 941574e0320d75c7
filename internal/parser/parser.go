package parser

import (
	"bytes"
	"encoding/json"
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/mcncl/jsonbind/internal/errors" // Custom errors package
	"github.com/mcncl/jsonbind/internal/models"
)

// Parse reads JSON from an io.Reader into an IntermediateRepresentation
func Parse(reader io.Reader) (models.IntermediateRepresentation, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError("failed to read input", err)
	}
	return ParseBytes(data)
}

// ParseBytes converts raw JSON text into an IntermediateRepresentation.
// Object members keep their document order.
func ParseBytes(data []byte) (models.IntermediateRepresentation, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.IntermediateRepresentation{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}

	// jsonparser is lenient about some malformed documents, so the text is
	// validated first and the tree is only built from well-formed input.
	if !json.Valid(data) {
		return models.IntermediateRepresentation{}, syntaxError(data)
	}

	raw, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewParsingError("failed to decode JSON", err)
	}

	root, err := build(raw, dataType)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewParsingError("failed to decode JSON", err)
	}

	return models.IntermediateRepresentation{
		Root:        root,
		RootIsArray: root.Kind() == models.Array,
	}, nil
}

// syntaxError describes why data failed validation, using encoding/json to
// locate the offending offset.
func syntaxError(data []byte) error {
	var discard interface{}
	err := json.Unmarshal(data, &discard)

	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d", syntaxErr.Offset),
			errors.ErrInvalidJSON,
		)
	}
	return errors.NewParsingError("invalid JSON document", errors.ErrInvalidJSON)
}

// build converts a value located by jsonparser into a models.Value.
// For strings, raw holds the contents without the surrounding quotes.
func build(raw []byte, dataType jsonparser.ValueType) (models.Value, error) {
	switch dataType {
	case jsonparser.Null:
		return models.NullValue(), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return models.Value{}, err
		}
		return models.BoolValue(b), nil
	case jsonparser.Number:
		return models.NumberValue(string(raw)), nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return models.Value{}, err
		}
		return models.StringValue(s), nil
	case jsonparser.Array:
		return buildArray(raw)
	case jsonparser.Object:
		return buildObject(raw)
	default:
		return models.Value{}, fmt.Errorf("unexpected json value type: %s", dataType)
	}
}

func buildArray(raw []byte) (models.Value, error) {
	items := make([]models.Value, 0)
	var buildErr error
	_, err := jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if buildErr != nil {
			return
		}
		if err != nil {
			buildErr = err
			return
		}
		item, err := build(value, dataType)
		if err != nil {
			buildErr = err
			return
		}
		items = append(items, item)
	})
	if err != nil {
		return models.Value{}, err
	}
	if buildErr != nil {
		return models.Value{}, buildErr
	}
	return models.ArrayValue(items...), nil
}

func buildObject(raw []byte) (models.Value, error) {
	members := make([]models.Member, 0)
	err := jsonparser.ObjectEach(raw, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		item, err := build(value, dataType)
		if err != nil {
			return err
		}
		// key may point into a scratch buffer owned by jsonparser
		members = append(members, models.Member{Key: string(key), Value: item})
		return nil
	})
	if err != nil {
		return models.Value{}, err
	}
	return models.ObjectValue(members...), nil
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.IntermediateRepresentation, error) {
	return ParseBytes([]byte(jsonString))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.IntermediateRepresentation{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return Parse(file)
}
