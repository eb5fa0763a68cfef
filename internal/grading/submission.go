package grading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/errs"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

// RawAnswer is one question's answer as it arrived at the boundary: a single
// answer id or a list of them, still as text.
type RawAnswer struct {
	Values []string
	List   bool
}

func Single(id string) RawAnswer { return RawAnswer{Values: []string{id}} }

func Multi(ids ...string) RawAnswer { return RawAnswer{Values: ids, List: true} }

func (r RawAnswer) Empty() bool { return len(r.nonBlank()) == 0 }

func (r RawAnswer) nonBlank() []string { return nonBlank(r.Values) }

// UnmarshalJSON accepts "12", 12, ["12","13"] or [12, 13].
func (r *RawAnswer) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		r.List = true
		r.Values = make([]string, 0, len(items))
		for _, it := range items {
			s, err := scalar(it)
			if err != nil {
				return err
			}
			r.Values = append(r.Values, s)
		}
		return nil
	}
	s, err := scalar(b)
	if err != nil {
		return err
	}
	r.List = false
	r.Values = []string{s}
	return nil
}

func (r RawAnswer) MarshalJSON() ([]byte, error) {
	if r.List {
		if r.Values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(r.Values)
	}
	if len(r.Values) == 0 {
		return []byte(`""`), nil
	}
	return json.Marshal(r.Values[0])
}

func scalar(b []byte) (string, error) {
	if string(b) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return "", fmt.Errorf("answer must be a string, number or list: %s", b)
	}
	return n.String(), nil
}

// RawSubmission maps question id to the learner's raw answer.
type RawSubmission map[int64]RawAnswer

// Selection is one question's normalized answer. Single choice carries exactly
// one id; multiple choice carries a sorted, de-duplicated set (possibly empty).
type Selection struct {
	QuestionID int64             `json:"question_id"`
	Type       quiz.QuestionType `json:"type"`
	AnswerIDs  []int64           `json:"answer_ids"`
}

// Normalized is a submission in the answer key's question order.
type Normalized []Selection

// Normalize converts a raw submission into comparable form. The first
// unanswered or malformed question aborts the whole submission. Answer ids
// that do not belong to the question are kept and simply never match.
func Normalize(key quiz.Quiz, raw RawSubmission) (Normalized, error) {
	out := make(Normalized, 0, len(key.Questions))
	for _, q := range key.Questions {
		ra, ok := raw[q.ID]
		if !ok {
			return nil, errs.MissingAnswerError{QuestionID: q.ID}
		}
		sel := Selection{QuestionID: q.ID, Type: q.Type}
		values := ra.nonBlank()

		switch q.Type {
		case quiz.SingleChoice:
			if len(values) == 0 {
				return nil, errs.MissingAnswerError{QuestionID: q.ID}
			}
			if len(values) > 1 {
				return nil, errs.MalformedAnswerError{QuestionID: q.ID, Value: strings.Join(values, ",")}
			}
			id, err := parseID(q.ID, values[0])
			if err != nil {
				return nil, err
			}
			sel.AnswerIDs = []int64{id}
		default:
			ids, err := parseSet(q.ID, values)
			if err != nil {
				return nil, err
			}
			sel.AnswerIDs = ids
		}
		out = append(out, sel)
	}
	return out, nil
}

func parseID(questionID int64, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errs.MalformedAnswerError{QuestionID: questionID, Value: s}
	}
	return id, nil
}

func parseSet(questionID int64, values []string) ([]int64, error) {
	seen := make(map[int64]struct{}, len(values))
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := parseID(questionID, v)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
