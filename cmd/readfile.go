package cmd

import (
	"io"
	"os"

	"github.com/shem-sql/shem/internal/shemerr"
)

// readFileOrStdin reads path, or stdin when path is "-".
func readFileOrStdin(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", shemerr.New(shemerr.KindConnectionError, "reading stdin", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", shemerr.New(shemerr.KindConnectionError, "reading "+path, err)
	}
	return string(data), nil
}
