// Package merge writes machine translations back into a PO catalog.
//
// Translations are keyed by message context (msgctxt): every catalog entry
// whose context is a key of the mapping gets its msgstr replaced. Nothing
// is added or removed, so the catalog keeps its entry count.
package merge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/minios-linux/lokitd/failure"
	po "github.com/minios-linux/lokitd/pofile"
)

// Result is a merged catalog.
type Result struct {
	// Data is the serialized catalog.
	Data []byte
	// Entries is the number of entries in the catalog, header included.
	Entries int
	// Updated is the number of entries whose msgstr was replaced.
	Updated int
	// Language is the catalog's Language header, if any.
	Language string
	// Translated, Fuzzy and Untranslated count the messages of the merged
	// catalog, header and obsolete entries excluded.
	Translated, Fuzzy, Untranslated int
}

// Apply replaces the msgstr of every entry in cat whose msgctxt is a key
// of translations and returns the number of replaced entries.
//   - Entries without a msgctxt are never matched.
//   - An empty translation still replaces the existing one.
//   - Plural entries get msgstr[0] replaced; other forms are kept.
func Apply(cat po.Catalog, translations map[string]string) int {
	updated := 0
	for ctxt, byID := range cat {
		if ctxt == "" {
			continue
		}
		value, ok := translations[ctxt]
		if !ok {
			continue
		}
		for _, entry := range byID {
			if entry.MsgIDPlural != "" {
				if entry.MsgStrPlural == nil {
					entry.MsgStrPlural = make(map[int]string)
				}
				entry.MsgStrPlural[0] = value
			} else {
				entry.MsgStr = value
			}
			updated++
		}
	}
	return updated
}

// Catalog parses raw as a PO file, applies the JSON object mapping and
// returns the re-serialized catalog. Malformed input of either kind is
// reported as failure.InvalidInput.
func Catalog(ctx context.Context, raw, mapping []byte) (*Result, error) {
	_, span := tracer.Start(ctx, "merge.Catalog")
	defer span.End()

	translations, err := decodeMapping(mapping)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		err := failure.New(failure.InvalidInput, "Invalid catalog").
			WithDetails("the catalog part is empty")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	file, err := po.ParseBytes(raw)
	if err != nil {
		ferr := failure.Wrap(failure.InvalidInput, "Invalid catalog", err).
			WithDetails("the catalog is not a valid PO file: %s", err.Error())
		span.RecordError(err)
		span.SetStatus(codes.Error, ferr.Message)
		return nil, ferr
	}

	updated := Apply(file.Contexts(), translations)

	data, err := file.Bytes()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("serializing catalog: %w", err)
	}

	res := &Result{
		Data:     data,
		Entries:  file.Len(),
		Updated:  updated,
		Language: file.HeaderField("Language"),
	}
	_, res.Translated, res.Fuzzy, res.Untranslated = file.Stats()

	span.SetAttributes(
		attribute.Int("catalog.entries", res.Entries),
		attribute.Int("catalog.updated", res.Updated),
		attribute.Int("catalog.translated", res.Translated),
		attribute.Int("catalog.untranslated", res.Untranslated),
		attribute.String("catalog.language", res.Language),
	)

	return res, nil
}

// decodeMapping decodes a JSON object of strings.
func decodeMapping(data []byte) (map[string]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, failure.New(failure.InvalidInput, "Invalid translations").
			WithDetails("the translations part is empty")
	}

	var translations map[string]string
	if err := json.Unmarshal(data, &translations); err != nil {
		return nil, failure.Wrap(failure.InvalidInput, "Invalid translations", err).
			WithDetails("the translations part is not a JSON object of strings: %s", err.Error())
	}
	if translations == nil {
		// JSON null decodes without error
		return nil, failure.New(failure.InvalidInput, "Invalid translations").
			WithDetails("the translations part is not a JSON object of strings: %s", "null")
	}
	return translations, nil
}
