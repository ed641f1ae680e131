package jobspec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shorts/internal/compose"
)

// headerAliases maps accepted clip-list column names onto canonical ones.
var headerAliases = map[string]string{
	"link":           "link",
	"source":         "link",
	"source_ref":     "link",
	"sourceref":      "link",
	"keyword":        "keyword",
	"start":          "start",
	"trim_start":     "start",
	"trimstart":      "start",
	"start_time":     "start",
	"end":            "end",
	"trim_end":       "end",
	"trimend":        "end",
	"end_time":       "end",
	"timeline_start": "timeline_start",
	"timelinestart":  "timeline_start",
}

var requiredHeaders = []string{"link", "start", "end"}

// DecodeClipList parses a CSV or TSV clip list. The header row names the
// columns (link, keyword, start, end, timeline_start); times are seconds or
// clock values such as 1:23.5. Row problems are collected into
// ValidationErrors and the parsed rows are still returned.
func DecodeClipList(data []byte) ([]ClipRecord, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: clip list is empty", compose.ErrInvalidJob)
	}

	comma, err := detectDelimiter(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1

	var (
		clips     []ClipRecord
		errs      ValidationErrors
		headerMap map[string]int
	)

	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: parse clip list: %v", compose.ErrInvalidJob, err)
		}

		if headerMap == nil {
			headerMap, err = buildHeaderMap(record)
			if err != nil {
				return nil, err
			}
			continue
		}
		if isEmptyRecord(record) {
			continue
		}

		clip, rowErrs := parseClipRecord(record, headerMap, len(clips)+1)
		errs = append(errs, rowErrs...)
		clips = append(clips, clip)
	}

	if len(clips) == 0 {
		return nil, fmt.Errorf("%w: clip list has no data rows", compose.ErrInvalidJob)
	}
	if len(errs) > 0 {
		return clips, errs
	}
	return clips, nil
}

func detectDelimiter(data []byte) (rune, error) {
	header := string(data)
	if idx := strings.IndexAny(header, "\r\n"); idx >= 0 {
		header = header[:idx]
	}
	switch {
	case strings.Contains(header, "\t"):
		return '\t', nil
	case strings.Contains(header, ","):
		return ',', nil
	}
	return 0, fmt.Errorf("%w: unable to detect delimiter (expected comma or tab)", compose.ErrInvalidJob)
}

func buildHeaderMap(header []string) (map[string]int, error) {
	headerMap := make(map[string]int, len(header))
	for idx, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		canonical, ok := headerAliases[name]
		if !ok {
			continue
		}
		if _, exists := headerMap[canonical]; exists {
			return nil, fmt.Errorf("%w: duplicate column for %s", compose.ErrInvalidJob, canonical)
		}
		headerMap[canonical] = idx
	}
	for _, required := range requiredHeaders {
		if _, ok := headerMap[required]; !ok {
			return nil, fmt.Errorf("%w: missing required column: %s", compose.ErrInvalidJob, required)
		}
	}
	return headerMap, nil
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func parseClipRecord(record []string, header map[string]int, index int) (ClipRecord, []ValidationError) {
	var errs []ValidationError

	get := func(field string) string {
		pos, ok := header[field]
		if !ok || pos >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[pos])
	}
	seconds := func(field string, required bool) float64 {
		raw := get(field)
		if raw == "" {
			if required {
				errs = append(errs, ValidationError{Clip: index, Field: field, Message: "is required"})
			}
			return 0
		}
		v, err := ParseClock(raw)
		if err != nil {
			errs = append(errs, ValidationError{Clip: index, Field: field, Message: err.Error()})
		}
		return v
	}

	clip := ClipRecord{
		Link:          get("link"),
		Keyword:       get("keyword"),
		TrimStart:     seconds("start", true),
		TrimEnd:       seconds("end", true),
		TimelineStart: seconds("timeline_start", false),
	}
	if clip.Link == "" {
		errs = append(errs, ValidationError{Clip: index, Field: "link", Message: "is required"})
	}
	return clip, errs
}

// ParseClock parses plain seconds ("83.5") or clock values ("1:23.5",
// "0:01:23") into seconds.
func ParseClock(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("time is empty")
	}

	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", value)
	}

	secs, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("invalid seconds in %q", value)
	}
	if len(parts) == 1 {
		return secs, nil
	}
	if secs >= 60 {
		return 0, fmt.Errorf("seconds must be below 60 in %q", value)
	}

	total := secs
	multiplier := 60.0
	for i := len(parts) - 2; i >= 0; i-- {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid component %q in %q", parts[i], value)
		}
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("minutes must be below 60 in %q", value)
		}
		total += float64(n) * multiplier
		multiplier *= 60
	}
	return total, nil
}
