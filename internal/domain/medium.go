package domain

import "fmt"

// MediumKind discriminates the medium variants. Each kind is persisted in its
// own backing table; the kind together with the ticket id forms the handle
// used to reconstruct the variant.
type MediumKind string

const (
	MediumText          MediumKind = "text"
	MediumRecording     MediumKind = "recording"
	MediumInteractive   MediumKind = "interactive"
	MediumQuestionnaire MediumKind = "questionnaire"
)

var mediumKinds = map[MediumKind]struct{}{
	MediumText:          {},
	MediumRecording:     {},
	MediumInteractive:   {},
	MediumQuestionnaire: {},
}

// ParseMediumKind converts a stored discriminator into a MediumKind.
func ParseMediumKind(s string) (MediumKind, error) {
	k := MediumKind(s)
	if _, ok := mediumKinds[k]; !ok {
		return "", fmt.Errorf("%w: medium kind %q", ErrUnknownEnum, s)
	}
	return k, nil
}

func (k MediumKind) String() string { return string(k) }

// Medium is the closed set of content locations a ticket points at. The four
// variants carry structurally different fields, so each is persisted in a
// separate record shape and reassembled by kind instead of through a single
// table of nullable columns.
type Medium interface {
	Kind() MediumKind
}

// TextMedium locates an issue in text based material such as course books,
// reading lists and presentations.
type TextMedium struct {
	Page uint
	Line uint
}

func (TextMedium) Kind() MediumKind { return MediumText }

// RecordingMedium locates an issue in recorded material such as vodcasts,
// podcasts and live tutorial recordings.
type RecordingMedium struct {
	Time Timecode
}

func (RecordingMedium) Kind() MediumKind { return MediumRecording }

// InteractiveMedium locates an issue in interactive material like websites.
type InteractiveMedium struct {
	URL string
}

func (InteractiveMedium) Kind() MediumKind { return MediumInteractive }

// QuestionnaireMedium locates an issue in question-answer structured material
// such as practice exams and online tests.
type QuestionnaireMedium struct {
	Question uint
	Answer   string
}

func (QuestionnaireMedium) Kind() MediumKind { return MediumQuestionnaire }
