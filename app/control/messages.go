package control

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/xmer/fitgirl-rss-reader/app/messaging"
)

const (
	TargetAll             = "all"
	TargetDiscordNotifier = "discord-notifier"
)

// ValidationError reports a malformed control message. It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == messaging.ErrNonRetryable
}

type ResetMessage struct {
	Source    string  `json:"source"`
	Timestamp string  `json:"timestamp"`
	Target    *string `json:"target,omitempty"`
	Reason    *string `json:"reason,omitempty"`
}

type RefreshMessage struct {
	GameID        int64  `json:"gameId"`
	CorrectedName string `json:"correctedName"`
	Timestamp     string `json:"timestamp"`
}

// DecodeReset validates a reset message. serviceName is the target this
// service answers to besides "all" and "discord-notifier".
func DecodeReset(body []byte, serviceName string) (ResetMessage, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return ResetMessage{}, err
	}

	var msg ResetMessage

	if msg.Source, err = requiredString(fields, "source"); err != nil {
		return ResetMessage{}, err
	}
	if msg.Timestamp, err = requiredString(fields, "timestamp"); err != nil {
		return ResetMessage{}, err
	}

	if raw, ok := fields["target"]; ok {
		target, isString := raw.(string)
		valid := []string{serviceName, TargetDiscordNotifier, TargetAll}
		if !isString || !slices.Contains(valid, target) {
			return ResetMessage{}, &ValidationError{
				Field:   "target",
				Message: fmt.Sprintf("must be one of %s", strings.Join(valid, ", ")),
			}
		}
		msg.Target = &target
	}

	if raw, ok := fields["reason"]; ok {
		reason, isString := raw.(string)
		if !isString {
			return ResetMessage{}, &ValidationError{Field: "reason", Message: "must be a string"}
		}
		msg.Reason = &reason
	}

	return msg, nil
}

// DecodeRefresh validates a refresh message. gameId must be an integer.
func DecodeRefresh(body []byte) (RefreshMessage, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return RefreshMessage{}, err
	}

	var msg RefreshMessage

	number, ok := fields["gameId"].(json.Number)
	if !ok {
		return RefreshMessage{}, &ValidationError{Field: "gameId", Message: "missing or not a number"}
	}
	if msg.GameID, err = wholeNumber(number); err != nil {
		return RefreshMessage{}, &ValidationError{Field: "gameId", Message: "must be a whole number"}
	}

	if msg.CorrectedName, err = requiredString(fields, "correctedName"); err != nil {
		return RefreshMessage{}, err
	}
	if msg.Timestamp, err = requiredString(fields, "timestamp"); err != nil {
		return RefreshMessage{}, err
	}

	return msg, nil
}

// wholeNumber accepts integral values in any JSON number notation, so 42.0
// and 4.2e1 decode as 42.
func wholeNumber(number json.Number) (int64, error) {
	if n, err := number.Int64(); err == nil {
		return n, nil
	}
	f, err := number.Float64()
	if err != nil {
		return 0, err
	}
	if math.Trunc(f) != f || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%s is not a whole number", number)
	}
	return int64(f), nil
}

func decodeObject(body []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil || fields == nil {
		return nil, &ValidationError{Field: "body", Message: "must be a JSON object"}
	}
	return fields, nil
}

func requiredString(fields map[string]any, name string) (string, error) {
	value, ok := fields[name].(string)
	if !ok || value == "" {
		return "", &ValidationError{Field: name, Message: "missing or empty"}
	}
	return value, nil
}
