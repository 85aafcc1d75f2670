package loaders

import (
	"bufio"
	"bytes"
	"os"
	"strings"
)

type ShaderLoader struct{}

// Load reads a GLSL stage from path. A leading #version line is dropped,
// the program builder writes its own.
func (sl *ShaderLoader) Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var body strings.Builder
	scanner := bufio.NewScanner(bytes.NewReader(data))
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			if strings.HasPrefix(strings.TrimSpace(line), "#version") {
				continue
			}
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return body.String(), nil
}
