package input

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/julianpalladino/football-tracking/types"
)

// LoadConditions reads an initial conditions file. The file holds a JSON
// list of records:
//
//	[{"object": "player", "id": 10, "coordinates": [x, y, width, height]}]
func LoadConditions(path string) ([]types.TrackedObjectSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(types.ErrConfiguration, "reading initial conditions %s: %v", path, err)
	}
	specs, err := ParseConditions(data)
	if err != nil {
		return nil, errors.Wrapf(err, "initial conditions %s", path)
	}
	return specs, nil
}

// ParseConditions validates and converts the records of an initial
// conditions document. Any malformed record rejects the whole document, as
// does a repeated (object, id) pair. Colors are left for the session to
// assign.
func ParseConditions(data []byte) ([]types.TrackedObjectSpec, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.Wrap(types.ErrConfiguration, "invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, errors.Wrap(types.ErrConfiguration, "expected a list of records")
	}

	records := doc.Array()
	specs := make([]types.TrackedObjectSpec, 0, len(records))
	seen := make(map[string]int, len(records))

	for i, record := range records {
		spec, err := parseRecord(record)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}

		key := fmt.Sprintf("%s\x00%d", spec.Name, spec.ID)
		if first, dup := seen[key]; dup {
			return nil, errors.Wrapf(types.ErrConfiguration,
				"record %d repeats %q from record %d", i, spec.Label(), first)
		}
		seen[key] = i

		specs = append(specs, spec)
	}

	return specs, nil
}

func parseRecord(record gjson.Result) (types.TrackedObjectSpec, error) {
	if !record.IsObject() {
		return types.TrackedObjectSpec{}, errors.Wrap(types.ErrConfiguration, "record is not an object")
	}

	name := record.Get("object")
	if name.Type != gjson.String || name.String() == "" {
		return types.TrackedObjectSpec{}, errors.Wrap(types.ErrConfiguration, "object's name shouldn't be empty")
	}

	id := record.Get("id")
	if !isInteger(id) {
		return types.TrackedObjectSpec{}, errors.Wrap(types.ErrConfiguration, "object id should be an integer")
	}

	coords := record.Get("coordinates")
	if !coords.IsArray() {
		return types.TrackedObjectSpec{}, errors.Wrap(types.ErrConfiguration, "object coordinates should be a list")
	}
	values := coords.Array()
	if len(values) != 4 {
		return types.TrackedObjectSpec{}, errors.Wrapf(types.ErrConfiguration,
			"object coordinates should have 4 elements, got %d", len(values))
	}
	var xywh [4]int
	for i, v := range values {
		if !isInteger(v) {
			return types.TrackedObjectSpec{}, errors.Wrap(types.ErrConfiguration,
				"all elements in object's coordinates should be integers")
		}
		xywh[i] = int(v.Int())
	}

	return types.TrackedObjectSpec{
		Name:        name.String(),
		ID:          int(id.Int()),
		InitialBBox: types.NewBoundingBox(xywh[0], xywh[1], xywh[2], xywh[3]),
	}, nil
}

// isInteger accepts JSON numbers written without fraction or exponent
func isInteger(r gjson.Result) bool {
	return r.Type == gjson.Number && !strings.ContainsAny(r.Raw, ".eE")
}
