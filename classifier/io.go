package classifier

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// envelope is the on-disk form of any classifier.
type envelope struct {
	Family string          `json:"family"`
	Model  json.RawMessage `json:"model"`
}

// Marshal encodes a fitted classifier together with its family name.
func Marshal(c Classifier) ([]byte, error) {
	if !fitted(c) {
		return nil, ErrNotFitted
	}
	model, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s", c.Family())
	}
	return json.Marshal(envelope{Family: c.Family(), Model: model})
}

// Unmarshal decodes a classifier written by Marshal.
func Unmarshal(data []byte) (Classifier, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, "decoding classifier envelope")
	}
	c, err := New(env.Family, Params{})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(env.Model, c); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", env.Family)
	}
	if !fitted(c) {
		return nil, errors.Errorf("%s model has no learned state", env.Family)
	}
	return c, nil
}

// Load reads a classifier written by Marshal from r.
func Load(r io.Reader) (Classifier, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

func fitted(c Classifier) bool {
	switch m := c.(type) {
	case *Tree:
		return m.Tree != nil && len(m.Classes) > 0
	case *Forest:
		return len(m.Trees) > 0 && len(m.Classes) > 0
	case *Boosting:
		return len(m.Classes) > 0 && len(m.Init) > 0
	case *Majority:
		return true
	default:
		return false
	}
}
