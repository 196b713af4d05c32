package note

import (
	"bytes"
	"strings"

	"github.com/starford/vaultjoin/internal/apperr"
	"github.com/starford/vaultjoin/internal/codec"
)

// Delimiter opens and closes a metadata block. It must occupy a whole line and
// be the first line of the file to open a block.
const Delimiter = "---"

// split separates the metadata block from the body.
//
// When the first line is not the delimiter the whole content is body and
// opened is false. An opened block without a closing delimiter is an error,
// reported before anything attempts to decode the block.
func split(content string) (block, body string, opened bool, err error) {
	lines := splitLines(content)
	if len(lines) == 0 {
		return "", "", false, nil
	}
	if lines[0] != Delimiter {
		return "", content, false, nil
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if lines[i] == Delimiter {
			end = i
			break
		}
	}
	if end < 0 {
		return "", "", true, apperr.ErrUnclosedMetadata
	}

	block = strings.Join(lines[1:end], "\n")
	body = strings.Join(lines[end+1:], "\n")
	return block, body, true, nil
}

// splitLines splits on "\n", strips a trailing "\r" from each line and drops
// the empty element a terminating newline would leave behind.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Render produces the on-disk form of a note:
//
//	---
//	<serialized metadata>
//	---
//	<body>
//
// The serialized block always ends with a newline so the closing delimiter
// sits on its own line.
func Render(c codec.Codec, metadata any, body string) ([]byte, error) {
	block, err := c.Marshal(metadata)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(block) + len(body) + 2*len(Delimiter) + 3)
	buf.WriteString(Delimiter + "\n")
	buf.Write(block)
	if len(block) > 0 && block[len(block)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString(Delimiter + "\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}
