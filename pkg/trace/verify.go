package trace

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// VerifyResult is the outcome of verifying a trace file.
type VerifyResult struct {
	EventCount int
	Valid      bool
	BrokenAt   int // -1 if no break
	Complete   bool
	ChainHash  string
	Error      string
}

// VerifyFile verifies the hash chain of a trace file.
func VerifyFile(path string) (*VerifyResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	defer f.Close()
	return Verify(f)
}

// Verify checks hash chain integrity and that the run_complete event, if
// present, names the hash of the chain before it.
func Verify(r io.Reader) (*VerifyResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB max line

	expectedPrevHash := genesisHash
	count := 0
	broken := func(msg string, args ...any) *VerifyResult {
		return &VerifyResult{
			EventCount: count,
			BrokenAt:   count,
			Error:      fmt.Sprintf("event %d: ", count) + fmt.Sprintf(msg, args...),
		}
	}

	var last Event
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		count++

		var evt Event
		if err := json.Unmarshal(line, &evt); err != nil {
			return broken("invalid JSON: %v", err), nil
		}
		if evt.PrevHash != expectedPrevHash {
			return broken("prev_hash mismatch (expected %s..., got %.16s...)", expectedPrevHash[:16], evt.PrevHash), nil
		}
		if evt.Type == EventRunComplete {
			if h, _ := evt.Data["chain_hash"].(string); h != evt.PrevHash {
				return broken("run_complete chain_hash does not match the chain"), nil
			}
		}

		sum := sha256.Sum256(line)
		expectedPrevHash = hex.EncodeToString(sum[:])
		last = evt
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}

	return &VerifyResult{
		EventCount: count,
		Valid:      true,
		BrokenAt:   -1,
		Complete:   last.Type == EventRunComplete,
		ChainHash:  expectedPrevHash,
	}, nil
}
