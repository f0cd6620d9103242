// stdio.go — line-delimited JSON reader for the MCP stdio transport.
package bridge

import (
	"bufio"
	"io"
	"strings"
)

// MaxLineSize is 10 MiB, the teacher's generous scan-token buffer size for
// oversized tool arguments. ReadStdioMessage does not check it: a line is
// read whole whatever its length.
const MaxLineSize = 10 * 1024 * 1024

// ReadStdioMessage reads one line-delimited JSON-RPC message from stdin.
// Blank lines are skipped. Returns io.EOF once the stream is exhausted.
func ReadStdioMessage(reader *bufio.Reader) ([]byte, error) {
	for {
		lineBytes, err := reader.ReadBytes('\n')
		trimmed := strings.TrimSpace(string(lineBytes))
		if err != nil {
			if err == io.EOF {
				if trimmed == "" {
					return nil, io.EOF
				}
				return []byte(trimmed), nil
			}
			return nil, err
		}
		if trimmed == "" {
			continue
		}
		return []byte(trimmed), nil
	}
}
