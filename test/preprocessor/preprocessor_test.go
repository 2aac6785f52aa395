// test/preprocessor/preprocessor_test.go

package preprocessor_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rgehrsitz/pilc/pkg/preprocessor"
)

func TestParseDefinitions_Valid(t *testing.T) {
	validJSON := `{
        "COMPONENTS": {
            "DIGITAL_INPUT": [{"LABEL": "button", "VALUE": 4}],
            "SIMPLE_VIDEO_PLAYER": [{"LABEL": "intro", "VALUE": "intro.mp4"}]
        },
        "EVENTS": [
            {
                "LABEL": "Play on press",
                "CONDITIONS": [{"LABEL": "button", "METHOD": "equal_to", "VALUE": "PRESSED"}],
                "EFFECTS": [{"LABEL": "intro", "METHOD": "play"}],
                "ACTIVATE": [],
                "DEACTIVATE": []
            }
        ]
    }`

	defs, err := preprocessor.ParseDefinitions([]byte(validJSON))
	require.NoError(t, err)
	assert.Equal(t, []string{"button", "intro"}, defs.Registry.Labels())
	assert.Equal(t, []string{"Play on press"}, defs.Draft.Labels())
}

func TestParseDefinitions_InvalidJSON(t *testing.T) {
	_, err := preprocessor.ParseDefinitions([]byte(`{"EVENTS": [`))
	assert.Error(t, err)
}

func TestParseDefinitions_IncompleteRow(t *testing.T) {
	incompleteJSON := `{
        "COMPONENTS": {"ANALOG_INPUT": [{"LABEL": "pot", "VALUE": 0}]},
        "EVENTS": [{"LABEL": "Bright", "CONDITIONS": [{"LABEL": "pot", "METHOD": "greater_than"}]}]
    }`

	_, err := preprocessor.ParseDefinitions([]byte(incompleteJSON))

	var formErr *preprocessor.IncompleteFormError
	require.True(t, errors.As(err, &formErr))
	assert.Equal(t, "events", formErr.Page)
	require.Len(t, formErr.Problems, 1)
	assert.Equal(t, "Conditions[0].value of event 'Bright'", formErr.Problems[0].Field)
}

func TestParseDefinitions_DanglingSubject(t *testing.T) {
	danglingJSON := `{
        "COMPONENTS": {},
        "EVENTS": [{"LABEL": "Ghost", "EFFECTS": [{"LABEL": "lamp", "METHOD": "toggle"}]}]
    }`

	_, err := preprocessor.ParseDefinitions([]byte(danglingJSON))

	var formErr *preprocessor.IncompleteFormError
	require.True(t, errors.As(err, &formErr))
	assert.Equal(t, "Effects[0].subject of event 'Ghost'", formErr.Problems[0].Field)
}

func TestParseDefinitions_ValueOutOfRange(t *testing.T) {
	outOfRangeJSON := `{
        "COMPONENTS": {"ANALOG_INPUT": [{"LABEL": "pot", "VALUE": 0}]},
        "EVENTS": [{"LABEL": "Bright", "CONDITIONS": [{"LABEL": "pot", "METHOD": "less_than", "VALUE": 4096}]}]
    }`

	_, err := preprocessor.ParseDefinitions([]byte(outOfRangeJSON))
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	looseJSON := `{
        "COMPONENTS": {
            "Timers": [{"LABEL": "clock", "VALUE": "0"}],
            "Digital Outputs": [{"LABEL": "lamp", "VALUE": "17"}]
        },
        "EVENTS": [
            {
                "LABEL": "Start",
                "CONDITIONS": [{"LABEL": "clock", "METHOD": "Get State", "VALUE": "Stopped"}],
                "EFFECTS": [{"LABEL": "clock", "METHOD": "set_state", "ARG": "RUN"}, {"LABEL": "lamp", "METHOD": "Toggle"}]
            }
        ]
    }`

	out, err := preprocessor.Normalize([]byte(looseJSON))
	require.NoError(t, err)

	assert.JSONEq(t, `{
        "COMPONENTS": {
            "DIGITAL_OUTPUT": [{"LABEL": "lamp", "VALUE": 17}],
            "TIMER": [{"LABEL": "clock", "VALUE": 0}]
        },
        "EVENTS": [
            {
                "LABEL": "Start",
                "CONDITIONS": [{"LABEL": "clock", "METHOD": "get_state", "VALUE": "STOPPED"}],
                "EFFECTS": [
                    {"LABEL": "clock", "METHOD": "set_state", "ARG": "RUNNING"},
                    {"LABEL": "lamp", "METHOD": "toggle"}
                ],
                "ACTIVATE": [],
                "DEACTIVATE": []
            }
        ]
    }`, string(out))
}

func TestParseDefinitionsWithCatalog_NilCatalog(t *testing.T) {
	_, err := preprocessor.ParseDefinitionsWithCatalog([]byte(`{}`), nil)
	assert.Error(t, err)
}
