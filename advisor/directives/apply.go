package directives

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Apply instruments source code with pragmas: after each labeled line
// (containing the marker L<n> for consecutive n starting at 1), the pragma
// registered for that label is inserted on the following line. Lines without
// a matching pragma pass through unchanged.
func Apply(r io.Reader, w io.Writer, pragmas map[string]string) error {
	scanner := bufio.NewScanner(r)
	writer := bufio.NewWriter(w)
	count := 1
	for scanner.Scan() {
		line := scanner.Text()
		if _, err := fmt.Fprintln(writer, line); err != nil {
			return fmt.Errorf("writing instrumented source: %w", err)
		}

		stripped := strings.NewReplacer(" ", "", "\t", "").Replace(line)
		marker := fmt.Sprintf("L%d", count)
		if strings.Contains(stripped, marker) {
			if pragma, ok := pragmas[marker]; ok {
				if _, err := fmt.Fprintln(writer, pragma); err != nil {
					return fmt.Errorf("writing pragma: %w", err)
				}
			}
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading source: %w", err)
	}
	return writer.Flush()
}

// ApplyFile instruments the source at inputPath and writes the result to
// outputPath.
func ApplyFile(inputPath, outputPath string, pragmas map[string]string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating instrumented source: %w", err)
	}
	if err := Apply(in, out, pragmas); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
