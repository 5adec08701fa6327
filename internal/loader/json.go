package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"griddemo/pkg/records"
)

// ReadJSON reads records from a JSON document.
//
// Accepted shapes:
//   - A root array: each object element is one record; null elements are
//     skipped.
//   - A root object whose first array field holds only objects (envelope):
//     that array is the record list and the other fields are ignored.
//   - Any other root object: it is the single record.
//
// Additional objects after the root value (JSON Lines style) are appended.
// Keys keep their document order, nested objects become records too, and
// numbers are json.Number. Arrays of strings become []string.
func ReadJSON(ctx context.Context, r io.Reader, _ Options) ([]records.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	rows := []records.Record{}
	emit := func(rec records.Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows = append(rows, rec)
		return nil
	}

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return rows, nil
	}
	if err != nil {
		return nil, fmt.Errorf("json: read first token: %w", err)
	}

	switch tok {
	case json.Delim('['):
		if err := readObjectArray(dec, emit); err != nil {
			return nil, err
		}
	case json.Delim('{'):
		if err := readEnvelopeOrSingle(dec, emit); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("json: unsupported root token %v (want object or array)", tok)
	}

	if err := readTrailingObjects(dec, emit); err != nil {
		return nil, err
	}
	return rows, nil
}

// readObjectArray reads the elements of an array whose '[' was consumed,
// including the closing ']'.
func readObjectArray(dec *json.Decoder, emit func(records.Record) error) error {
	for i := 0; dec.More(); i++ {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("json: read array element %d: %w", i, err)
		}
		if tok == nil {
			continue
		}
		if tok != json.Delim('{') {
			return fmt.Errorf("json: array element %d is not an object (got %v)", i, tok)
		}
		rec, err := readObject(dec)
		if err != nil {
			return err
		}
		if err := emit(rec); err != nil {
			return err
		}
	}
	return expectDelim(dec, ']')
}

// readEnvelopeOrSingle walks a root object whose '{' was consumed.
func readEnvelopeOrSingle(dec *json.Decoder, emit func(records.Record) error) error {
	single := records.Record{}
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return err
		}
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("json: read value of %q: %w", key, err)
		}

		if tok != json.Delim('[') {
			v, err := readValue(dec, tok)
			if err != nil {
				return err
			}
			single = set(single, key, v)
			continue
		}

		elems, err := readArray(dec)
		if err != nil {
			return err
		}
		objs, ok := objectsOnly(elems)
		if !ok {
			single = set(single, key, normalizeArray(elems))
			continue
		}

		// Envelope: the rest of the root object is skipped.
		for dec.More() {
			if _, err := readKey(dec); err != nil {
				return err
			}
			if err := skipValue(dec); err != nil {
				return err
			}
		}
		if err := expectDelim(dec, '}'); err != nil {
			return err
		}
		for _, o := range objs {
			if err := emit(o); err != nil {
				return err
			}
		}
		return nil
	}

	if err := expectDelim(dec, '}'); err != nil {
		return err
	}
	return emit(single)
}

func readTrailingObjects(dec *json.Decoder, emit func(records.Record) error) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("json: read trailing object: %w", err)
		}
		if tok != json.Delim('{') {
			return fmt.Errorf("json: trailing value is not an object (got %v)", tok)
		}
		rec, err := readObject(dec)
		if err != nil {
			return err
		}
		if err := emit(rec); err != nil {
			return err
		}
	}
}

// readObject reads an object whose '{' was consumed, keeping key order.
// A repeated key keeps its first position and its last value.
func readObject(dec *json.Decoder) (records.Record, error) {
	rec := records.Record{}
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("json: read value of %q: %w", key, err)
		}
		v, err := readValue(dec, tok)
		if err != nil {
			return nil, err
		}
		rec = set(rec, key, v)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return rec, nil
}

// readArray reads an array whose '[' was consumed. Object elements are
// records.Record values.
func readArray(dec *json.Decoder) ([]any, error) {
	out := []any{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("json: read array value: %w", err)
		}
		v, err := readValue(dec, tok)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return out, nil
}

// readValue materializes the value starting at tok.
func readValue(dec *json.Decoder, tok json.Token) (any, error) {
	switch tok {
	case json.Delim('{'):
		return readObject(dec)
	case json.Delim('['):
		elems, err := readArray(dec)
		if err != nil {
			return nil, err
		}
		return normalizeArray(elems), nil
	}
	if d, ok := tok.(json.Delim); ok {
		return nil, fmt.Errorf("json: unexpected delimiter %q", d)
	}
	return tok, nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("json: read object key: %w", err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("json: object key not a string (got %T)", tok)
	}
	return key, nil
}

// skipValue discards the next value without materializing it.
func skipValue(dec *json.Decoder) error {
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("json: skip value: %w", err)
		}
		switch tok {
		case json.Delim('{'), json.Delim('['):
			depth++
		case json.Delim('}'), json.Delim(']'):
			depth--
		}
		if depth == 0 {
			return nil
		}
	}
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("json: read %q: %w", want, err)
	}
	if tok != want {
		return fmt.Errorf("json: expected %q, got %v", want, tok)
	}
	return nil
}

// objectsOnly reports whether elems holds only objects (nulls skipped).
func objectsOnly(elems []any) ([]records.Record, bool) {
	out := make([]records.Record, 0, len(elems))
	for _, e := range elems {
		if e == nil {
			continue
		}
		rec, ok := e.(records.Record)
		if !ok {
			return nil, false
		}
		out = append(out, rec)
	}
	return out, true
}

// normalizeArray turns an all-string array into []string.
func normalizeArray(elems []any) any {
	if len(elems) == 0 {
		return elems
	}
	ss := make([]string, 0, len(elems))
	for _, e := range elems {
		s, ok := e.(string)
		if !ok {
			return elems
		}
		ss = append(ss, s)
	}
	return ss
}

func set(rec records.Record, name string, v any) records.Record {
	for i := range rec {
		if rec[i].Name == name {
			rec[i].Value = v
			return rec
		}
	}
	return append(rec, records.Field{Name: name, Value: v})
}
