package extraction

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/anirame128/fortnite-insight-dashboard/internal/models"
)

var mapCodePattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}$`)

// Resource ID markers in the island page, tried in order. Each marker may sit
// before or after the data-id attribute inside the same tag.
var resourceIDPatterns = []*regexp.Regexp{
	markerPattern("favorite"),
	markerPattern("chart-week"),
}

var currentPlayersPattern = regexp.MustCompile(`\bdata-n="(\d+)"`)

func markerPattern(marker string) *regexp.Regexp {
	m := regexp.QuoteMeta(marker)
	return regexp.MustCompile(
		`<[^>]*\b` + m + `\b[^>]*\bdata-id="(\d+)"` +
			`|<[^>]*\bdata-id="(\d+)"[^>]*\b` + m + `\b`)
}

// ValidateMapCode checks the 0000-0000-0000 island code format
func ValidateMapCode(code string) error {
	if code == "" {
		return &Error{Kind: KindInvalidInput, Err: fmt.Errorf("map code is required")}
	}
	if !mapCodePattern.MatchString(code) {
		return &Error{Kind: KindInvalidInput, Err: fmt.Errorf("%q does not match 0000-0000-0000", code)}
	}
	return nil
}

// ParseResourceID returns the first resource ID found in the island page
func ParseResourceID(doc []byte) (string, bool) {
	for _, re := range resourceIDPatterns {
		m := re.FindSubmatch(doc)
		if m == nil {
			continue
		}
		for _, g := range m[1:] {
			if len(g) > 0 {
				return string(g), true
			}
		}
	}
	return "", false
}

// ParseCurrentPlayers returns the live player count shown on the island page
func ParseCurrentPlayers(doc []byte) (float64, bool) {
	m := currentPlayersPattern.FindSubmatch(doc)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(string(m[1]), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseSeries decodes {"data":{"start":s,"step":s,"values":[...]}}
func ParseSeries(body []byte) (models.RawSeries, error) {
	if !gjson.ValidBytes(body) {
		return models.RawSeries{}, fmt.Errorf("response is not valid JSON")
	}

	data := gjson.GetBytes(body, "data")
	if !data.IsObject() {
		return models.RawSeries{}, fmt.Errorf("missing data object")
	}

	values := data.Get("values")
	if !values.IsArray() {
		return models.RawSeries{}, fmt.Errorf("data.values is not an array")
	}

	start, err := integerField(data, "start")
	if err != nil {
		return models.RawSeries{}, err
	}
	step, err := integerField(data, "step")
	if err != nil {
		return models.RawSeries{}, err
	}
	if step <= 0 {
		return models.RawSeries{}, fmt.Errorf("data.step must be positive, got %d", step)
	}

	elems := values.Array()
	series := models.RawSeries{
		StartEpochSeconds: start,
		StepSeconds:       step,
		Values:            make([]float64, len(elems)),
	}
	for i, v := range elems {
		switch v.Type {
		case gjson.Number:
			series.Values[i] = v.Float()
		case gjson.Null:
			// gaps are indistinguishable from zero at this layer
			series.Values[i] = 0
		default:
			return models.RawSeries{}, fmt.Errorf("data.values[%d] is not a number", i)
		}
	}
	return series, nil
}

func integerField(data gjson.Result, name string) (int64, error) {
	f := data.Get(name)
	if f.Type != gjson.Number {
		return 0, fmt.Errorf("data.%s is not a number", name)
	}
	n, err := strconv.ParseInt(f.Raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("data.%s is not an integer: %s", name, f.Raw)
	}
	return n, nil
}
