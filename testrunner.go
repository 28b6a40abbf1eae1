package keystone

import (
	"encoding/json"
	"fmt"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action string `json:"action"`
	Key    string `json:"key,omitempty"`
	Count  int    `json:"count,omitempty"`
	Label  string `json:"label,omitempty"`
	Frames int    `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// scriptTarget is what a TestRunner drives. App implements it.
type scriptTarget interface {
	InjectKey(k Key)
	PendingKeys() int
	Screenshot(label string)
}

// TestRunner sequences injected keys and screenshots across frames for
// automated runs on a real display. Attach to an App via SetTestRunner.
//
// Script example:
//
//	{"steps": [
//	  {"action": "key", "key": "confirm"},
//	  {"action": "key", "key": "right", "count": 4},
//	  {"action": "wait", "frames": 10},
//	  {"action": "screenshot", "label": "tl-moved"}
//	]}
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script. Unknown actions and key names
// are rejected.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "key":
			if ParseKey(st.Key) == KeyNone {
				return nil, fmt.Errorf("parse test script: step %d: unknown key %q", i, st.Key)
			}
		case "wait", "screenshot":
		default:
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the test runner by one frame. Called from App.Update
// before input is polled.
func (r *TestRunner) step(t scriptTarget) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if t.PendingKeys() > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		t.Screenshot(st.Label)
	case "key":
		k := ParseKey(st.Key)
		for i := 0; i < max(st.Count, 1); i++ {
			t.InjectKey(k)
		}
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && t.PendingKeys() == 0 {
		r.done = true
	}
}
