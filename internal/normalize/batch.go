package normalize

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// maxRowBytes bounds one JSONL row. Bulk payloads are stored out of
// band, so a row larger than this is malformed.
const maxRowBytes = 8 << 20

// BatchCounts summarizes one JSONL batch.
type BatchCounts struct {
	OK          int `json:"ok"`
	Quarantined int `json:"quarantined"`
	Rejected    int `json:"rejected"`
}

// Total returns the number of non-blank rows processed.
func (c BatchCounts) Total() int {
	return c.OK + c.Quarantined + c.Rejected
}

// verdictRow is a quarantine or reject output line: the reason plus the
// untouched input row for later replay.
type verdictRow struct {
	Reason string          `json:"reason"`
	Raw    json.RawMessage `json:"raw"`
}

// ProcessBatch normalizes one JSONL stream row by row. Canonical
// events go to events, quarantine and reject verdicts go to their own
// streams with the original row attached. Blank lines are skipped. A
// syntactically invalid row is rejected, not fatal; only I/O failures
// return an error.
func ProcessBatch(r io.Reader, events, quarantined, rejected io.Writer) (BatchCounts, error) {
	var counts BatchCounts

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxRowBytes)

	eventsEnc := json.NewEncoder(events)
	quarantinedEnc := json.NewEncoder(quarantined)
	rejectedEnc := json.NewEncoder(rejected)

	line := 0
	for scanner.Scan() {
		line++
		row := scanner.Bytes()
		if len(bytes.TrimSpace(row)) == 0 {
			continue
		}

		var in Input
		if err := json.Unmarshal(row, &in); err != nil {
			counts.Rejected++
			if writeErr := rejectedEnc.Encode(verdictRow{
				Reason: fmt.Sprintf("invalid JSON row: %v", err),
				Raw:    rawCopy(row),
			}); writeErr != nil {
				return counts, fmt.Errorf("write reject row %d: %w", line, writeErr)
			}
			continue
		}

		result := Normalize(in)
		switch {
		case result.Rejected():
			counts.Rejected++
			if err := rejectedEnc.Encode(verdictRow{Reason: result.Reason, Raw: rawCopy(row)}); err != nil {
				return counts, fmt.Errorf("write reject row %d: %w", line, err)
			}
		case result.Quarantined():
			counts.Quarantined++
			if err := quarantinedEnc.Encode(verdictRow{Reason: result.Reason, Raw: rawCopy(row)}); err != nil {
				return counts, fmt.Errorf("write quarantine row %d: %w", line, err)
			}
		default:
			counts.OK++
			if err := eventsEnc.Encode(result.Event); err != nil {
				return counts, fmt.Errorf("write event row %d: %w", line, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return counts, fmt.Errorf("read input: %w", err)
	}
	return counts, nil
}

// rawCopy detaches the row from the scanner's reused buffer.
func rawCopy(row []byte) json.RawMessage {
	out := make([]byte, len(row))
	copy(out, row)
	return out
}
