// Package pofile implements reading and writing of PO/POT files
// following the GNU gettext format specification.
//
// Parsing is strict: input that msgfmt would reject (unknown keywords,
// broken quoting, duplicate messages) is reported with its line number
// instead of being silently skipped.
package pofile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"
)

// Entry represents a single translatable message in a PO file.
type Entry struct {
	// TranslatorComments are lines starting with "# " (translator comments).
	TranslatorComments []string
	// ExtractedComments are lines starting with "#." (extracted/automatic comments).
	ExtractedComments []string
	// References are source code locations, lines starting with "#:".
	References []string
	// Flags are format flags, lines starting with "#,".
	Flags []string
	// PreviousMsgID stores the previous msgid for fuzzy entries, lines starting with "#|".
	PreviousMsgID string

	// MsgCtxt is the message context (msgctxt).
	MsgCtxt string
	// MsgID is the untranslated string.
	MsgID string
	// MsgIDPlural is the untranslated plural string.
	MsgIDPlural string
	// MsgStr is the translated string (singular or the only form).
	MsgStr string
	// MsgStrPlural maps plural form index to translated string.
	MsgStrPlural map[int]string

	// Obsolete marks entries prefixed with "#~".
	Obsolete bool
}

// IsHeader reports whether e is the metadata entry (empty msgid, no context).
func (e *Entry) IsHeader() bool {
	return e.MsgID == "" && e.MsgCtxt == "" && !e.Obsolete
}

// IsTranslated returns true if the entry has a non-empty translation.
func (e *Entry) IsTranslated() bool {
	if e.MsgID == "" {
		return false // header entry
	}
	if e.IsFuzzy() {
		return false
	}
	if e.MsgIDPlural != "" {
		for _, v := range e.MsgStrPlural {
			if v == "" {
				return false
			}
		}
		return len(e.MsgStrPlural) > 0
	}
	return e.MsgStr != ""
}

// IsFuzzy returns true if the entry is marked fuzzy.
func (e *Entry) IsFuzzy() bool {
	for _, f := range e.Flags {
		if f == "fuzzy" {
			return true
		}
	}
	return false
}

// File represents a parsed PO/POT file.
type File struct {
	// Header is the metadata entry (msgid ""). Nil when the file has none.
	Header *Entry
	// Entries are the translatable message entries, in file order.
	Entries []*Entry
}

// HeaderField returns a header field value by name.
func (f *File) HeaderField(name string) string {
	if f.Header == nil {
		return ""
	}
	for _, line := range strings.Split(f.Header.MsgStr, "\n") {
		if idx := strings.Index(line, ":"); idx > 0 {
			key := strings.TrimSpace(line[:idx])
			if strings.EqualFold(key, name) {
				return strings.TrimSpace(line[idx+1:])
			}
		}
	}
	return ""
}

// Len returns the number of entries including the header.
func (f *File) Len() int {
	n := len(f.Entries)
	if f.Header != nil {
		n++
	}
	return n
}

// Stats returns translation statistics.
func (f *File) Stats() (total, translated, fuzzy, untranslated int) {
	for _, e := range f.Entries {
		if e.MsgID == "" || e.Obsolete {
			continue
		}
		total++
		if e.IsFuzzy() {
			fuzzy++
		} else if e.IsTranslated() {
			translated++
		} else {
			untranslated++
		}
	}
	return
}

// ---------------------------------------------------------------------------
// Nested view
// ---------------------------------------------------------------------------

// Catalog is a context → msgid → entry view over a File. The entries are
// shared with the File, so changes made through the Catalog are written
// by File.Write.
type Catalog map[string]map[string]*Entry

// Contexts returns the nested view of f. The header, if any, is stored
// under context "" and msgid "". Obsolete entries are not included.
func (f *File) Contexts() Catalog {
	cat := make(Catalog)
	add := func(e *Entry) {
		byID, ok := cat[e.MsgCtxt]
		if !ok {
			byID = make(map[string]*Entry)
			cat[e.MsgCtxt] = byID
		}
		byID[e.MsgID] = e
	}
	if f.Header != nil {
		add(f.Header)
	}
	for _, e := range f.Entries {
		if !e.Obsolete {
			add(e)
		}
	}
	return cat
}

// Len returns the number of entries in the view.
func (c Catalog) Len() int {
	n := 0
	for _, byID := range c {
		n += len(byID)
	}
	return n
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseBytes parses a PO/POT file held in memory.
func ParseBytes(data []byte) (*File, error) {
	return Parse(bytes.NewReader(data))
}

// Parse reads a PO/POT file from a reader.
func Parse(r io.Reader) (*File, error) {
	f := &File{Entries: make([]*Entry, 0)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	var (
		current   *Entry
		lastField  string // tracks the last msgid/msgstr/etc. field for multiline strings
		seenMsgID  bool
		seenMsgStr bool
		startLine int
		lineNum   int
	)
	seen := make(map[string]int) // msgctxt\x04msgid -> line of first definition

	flush := func() error {
		if current == nil {
			return nil
		}
		defer func() {
			current = nil
			lastField = ""
			seenMsgID = false
			seenMsgStr = false
		}()
		if !seenMsgID {
			return fmt.Errorf("line %d: entry has no msgid", startLine)
		}
		if current.IsHeader() {
			if f.Header != nil {
				return fmt.Errorf("line %d: duplicate header entry", startLine)
			}
			f.Header = current
			return nil
		}
		if !current.Obsolete {
			key := current.MsgCtxt + "\x04" + current.MsgID
			if first, dup := seen[key]; dup {
				return fmt.Errorf("line %d: duplicate message definition (first defined at line %d)", startLine, first)
			}
			seen[key] = startLine
		}
		f.Entries = append(f.Entries, current)
		return nil
	}

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}
		if !utf8.ValidString(line) {
			return nil, fmt.Errorf("line %d: invalid UTF-8", lineNum)
		}

		// Empty line separates entries
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}

		// A comment, msgctxt or msgid after a msgstr starts the next entry
		// even without a separating blank line.
		if seenMsgStr && startsEntry(line) {
			if err := flush(); err != nil {
				return nil, err
			}
		}

		if current == nil {
			current = &Entry{
				MsgStrPlural: make(map[int]string),
			}
			startLine = lineNum
		}

		// Handle obsolete entries
		if strings.HasPrefix(line, "#~") {
			current.Obsolete = true
			rest := line[2:]
			if strings.HasPrefix(rest, "|") {
				parseComment(current, "#"+rest)
				continue
			}
			line = strings.TrimPrefix(rest, " ")
			if strings.TrimSpace(line) == "" {
				continue
			}
		}

		// Comment lines
		if strings.HasPrefix(line, "#") {
			parseComment(current, line)
			continue
		}

		keyword, rest := splitKeyword(line)
		switch {
		case keyword == "msgctxt", keyword == "msgid", keyword == "msgid_plural", keyword == "msgstr":
			val, err := unquote(rest)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", lineNum, keyword, err)
			}
			switch keyword {
			case "msgctxt":
				current.MsgCtxt = val
			case "msgid":
				current.MsgID = val
				seenMsgID = true
			case "msgid_plural":
				current.MsgIDPlural = val
			case "msgstr":
				current.MsgStr = val
				seenMsgStr = true
			}
			lastField = keyword

		case strings.HasPrefix(keyword, "msgstr["):
			var idx int
			n, err := fmt.Sscanf(keyword, "msgstr[%d]", &idx)
			if err != nil || n != 1 || idx < 0 || keyword != fmt.Sprintf("msgstr[%d]", idx) {
				return nil, fmt.Errorf("line %d: invalid msgstr index: %s", lineNum, line)
			}
			val, err := unquote(rest)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", lineNum, keyword, err)
			}
			current.MsgStrPlural[idx] = val
			lastField = keyword
			seenMsgStr = true

		case strings.HasPrefix(strings.TrimSpace(line), "\""):
			// Continuation line
			val, err := unquote(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			switch {
			case lastField == "msgctxt":
				current.MsgCtxt += val
			case lastField == "msgid":
				current.MsgID += val
			case lastField == "msgid_plural":
				current.MsgIDPlural += val
			case lastField == "msgstr":
				current.MsgStr += val
			case strings.HasPrefix(lastField, "msgstr["):
				var idx int
				fmt.Sscanf(lastField, "msgstr[%d]", &idx)
				current.MsgStrPlural[idx] += val
			default:
				return nil, fmt.Errorf("line %d: string continuation without a preceding keyword", lineNum)
			}

		default:
			return nil, fmt.Errorf("line %d: unexpected content: %s", lineNum, truncate(line, 60))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading PO file: %w", err)
	}

	// Flush last entry
	if err := flush(); err != nil {
		return nil, err
	}

	return f, nil
}

func parseComment(e *Entry, line string) {
	switch {
	case strings.HasPrefix(line, "#:"):
		e.References = append(e.References, strings.TrimSpace(line[2:]))
	case strings.HasPrefix(line, "#,"):
		for _, flag := range strings.Split(line[2:], ",") {
			flag = strings.TrimSpace(flag)
			if flag != "" {
				e.Flags = append(e.Flags, flag)
			}
		}
	case strings.HasPrefix(line, "#."):
		e.ExtractedComments = append(e.ExtractedComments, strings.TrimSpace(line[2:]))
	case strings.HasPrefix(line, "#|"):
		prev := strings.TrimSpace(line[2:])
		if strings.HasPrefix(prev, "msgid ") {
			if v, err := unquote(strings.TrimPrefix(prev, "msgid ")); err == nil {
				e.PreviousMsgID = v
			}
		}
	default:
		comment := strings.TrimPrefix(line[1:], " ")
		e.TranslatorComments = append(e.TranslatorComments, comment)
	}
}

// startsEntry reports whether line can only belong to a new entry once the
// current one has a msgstr.
func startsEntry(line string) bool {
	if strings.HasPrefix(line, "#~") {
		rest := strings.TrimPrefix(line[2:], " ")
		if strings.HasPrefix(rest, "|") {
			return true
		}
		line = rest
	}
	if strings.HasPrefix(line, "#") {
		return true
	}
	keyword, _ := splitKeyword(line)
	return keyword == "msgctxt" || keyword == "msgid"
}

// splitKeyword splits `msgid "x"` into ("msgid", `"x"`).
func splitKeyword(line string) (string, string) {
	idx := strings.IndexAny(line, " \t")
	if idx < 0 {
		return line, ""
	}
	return line[:idx], strings.TrimSpace(line[idx+1:])
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Write writes the PO file to a writer.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	first := true

	if f.Header != nil {
		writeEntry(bw, f.Header)
		first = false
	}

	for _, e := range f.Entries {
		if !first {
			fmt.Fprintln(bw)
		}
		first = false
		writeEntry(bw, e)
	}

	return bw.Flush()
}

// Bytes returns the serialized PO file.
func (f *File) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeEntry(w *bufio.Writer, e *Entry) {
	prefix := ""
	if e.Obsolete {
		prefix = "#~ "
	}

	for _, c := range e.TranslatorComments {
		if c == "" {
			fmt.Fprintln(w, "#")
			continue
		}
		fmt.Fprintf(w, "# %s\n", c)
	}
	for _, c := range e.ExtractedComments {
		fmt.Fprintf(w, "#. %s\n", c)
	}
	for _, ref := range e.References {
		fmt.Fprintf(w, "#: %s\n", ref)
	}
	if len(e.Flags) > 0 {
		fmt.Fprintf(w, "#, %s\n", strings.Join(e.Flags, ", "))
	}
	if e.PreviousMsgID != "" {
		fmt.Fprintf(w, "#| msgid %s\n", quote(e.PreviousMsgID))
	}

	if e.MsgCtxt != "" {
		writeQuotedField(w, prefix, "msgctxt", e.MsgCtxt)
	}
	writeQuotedField(w, prefix, "msgid", e.MsgID)
	if e.MsgIDPlural != "" {
		writeQuotedField(w, prefix, "msgid_plural", e.MsgIDPlural)
	}

	if e.MsgIDPlural != "" && len(e.MsgStrPlural) > 0 {
		indices := make([]int, 0, len(e.MsgStrPlural))
		for idx := range e.MsgStrPlural {
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		for _, idx := range indices {
			writeQuotedField(w, prefix, fmt.Sprintf("msgstr[%d]", idx), e.MsgStrPlural[idx])
		}
	} else {
		writeQuotedField(w, prefix, "msgstr", e.MsgStr)
	}
}

// writeQuotedField writes a PO field with proper multiline quoting.
func writeQuotedField(w *bufio.Writer, prefix, field, value string) {
	if !strings.Contains(value, "\n") {
		fmt.Fprintf(w, "%s%s %s\n", prefix, field, quote(value))
		return
	}

	// Multiline: use empty string on first line
	fmt.Fprintf(w, "%s%s \"\"\n", prefix, field)
	parts := strings.Split(value, "\n")
	for i, part := range parts {
		if i < len(parts)-1 {
			fmt.Fprintf(w, "%s%s\n", prefix, quote(part+"\n"))
		} else if part != "" {
			fmt.Fprintf(w, "%s%s\n", prefix, quote(part))
		}
	}
}

// quote produces a PO-style quoted string.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	return `"` + s + `"`
}

// unquote removes PO-style quoting from a string.
func unquote(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("expected a quoted string, got %s", truncate(s, 40))
	}
	s = s[1 : len(s)-1]

	var result strings.Builder
	result.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' {
			return "", fmt.Errorf("unescaped quote inside string")
		}
		if c != '\\' {
			result.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			return "", fmt.Errorf("string ends with a lone backslash")
		}
		i++
		switch s[i] {
		case 'n':
			result.WriteByte('\n')
		case 't':
			result.WriteByte('\t')
		case 'r':
			result.WriteByte('\r')
		case '\\':
			result.WriteByte('\\')
		case '"':
			result.WriteByte('"')
		default:
			// Keep unknown escapes verbatim, as msgfmt-compatible tools do.
			result.WriteByte('\\')
			result.WriteByte(s[i])
		}
	}
	return result.String(), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
