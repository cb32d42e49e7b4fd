package web

import (
    "bytes"
    "fmt"
    "io"
)

// writeEvent writes one Server-Sent Event. Every line of data gets its own
// "data:" field so multi-line HTML survives the stream.
func writeEvent(w io.Writer, event string, data []byte) error {
    if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
        return err
    }
    for _, line := range bytes.Split(bytes.TrimRight(data, "\n"), []byte("\n")) {
        if _, err := fmt.Fprintf(w, "data: %s\n", bytes.TrimRight(line, "\r")); err != nil {
            return err
        }
    }
    _, err := io.WriteString(w, "\n")
    return err
}
