package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoleRoundTrip(t *testing.T) {
	for _, role := range []Role{RoleStudent, RoleTutor, RoleAuthor, RoleAdmin} {
		parsed, err := ParseRole(role.String())
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}

	_, err := ParseRole("janitor")
	assert.ErrorIs(t, err, ErrUnknownEnum)
	_, err = ParseRole("")
	assert.ErrorIs(t, err, ErrUnknownEnum)
}

func TestRoleRankOrder(t *testing.T) {
	assert.True(t, RoleStudent.Rank() < RoleTutor.Rank())
	assert.True(t, RoleTutor.Rank() < RoleAuthor.Rank())
	assert.True(t, RoleAuthor.Rank() < RoleAdmin.Rank())

	assert.True(t, RoleAdmin.HasRank(RoleStudent))
	assert.True(t, RoleAuthor.HasRank(RoleTutor))
	assert.False(t, RoleStudent.HasRank(RoleTutor))
	assert.True(t, RoleTutor.HasRank(RoleTutor))
}

func TestParseTicketTypeRoundTrip(t *testing.T) {
	types := []TicketType{
		TypeCourseBook, TypeReadingList, TypeInteractiveBook,
		TypePracticeExam, TypePracticeExamSolution, TypeVodcast,
		TypePodcast, TypePresentation, TypeLiveTutorialRecording,
		TypeOnlineTest,
	}
	for _, ty := range types {
		parsed, err := ParseTicketType(ty.String())
		require.NoError(t, err)
		assert.Equal(t, ty, parsed)
	}

	_, err := ParseTicketType("billboard")
	assert.ErrorIs(t, err, ErrUnknownEnum)
}

func TestTicketTypeMediumKindTotal(t *testing.T) {
	expected := map[TicketType]MediumKind{
		TypeCourseBook:            MediumText,
		TypeReadingList:           MediumText,
		TypePresentation:          MediumText,
		TypeVodcast:               MediumRecording,
		TypePodcast:               MediumRecording,
		TypeLiveTutorialRecording: MediumRecording,
		TypeInteractiveBook:       MediumInteractive,
		TypePracticeExam:          MediumQuestionnaire,
		TypePracticeExamSolution:  MediumQuestionnaire,
		TypeOnlineTest:            MediumQuestionnaire,
	}
	for ty, kind := range expected {
		assert.Equal(t, kind, ty.MediumKind(), "type %s", ty)
	}
}

func TestParseCategoryRoundTrip(t *testing.T) {
	for _, c := range []Category{CategoryEditorial, CategoryContent, CategoryImprovement, CategoryAddition} {
		parsed, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	_, err := ParseCategory("misc")
	assert.ErrorIs(t, err, ErrUnknownEnum)
}

func TestParsePriorityRoundTrip(t *testing.T) {
	for _, p := range []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow} {
		parsed, err := ParsePriority(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
	_, err := ParsePriority("urgent")
	assert.ErrorIs(t, err, ErrUnknownEnum)
}

func TestParseStatusRoundTrip(t *testing.T) {
	for _, s := range []Status{StatusOpen, StatusInProgress, StatusAnswered, StatusClosed, StatusForwarded} {
		parsed, err := ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := ParseStatus("pending")
	assert.ErrorIs(t, err, ErrUnknownEnum)
}

func TestParseStatusEventRoundTrip(t *testing.T) {
	for _, e := range []StatusEvent{EventClaim, EventForward, EventAnswer, EventReopen, EventClose} {
		parsed, err := ParseStatusEvent(e.String())
		require.NoError(t, err)
		assert.Equal(t, e, parsed)
	}
	_, err := ParseStatusEvent("escalate")
	assert.ErrorIs(t, err, ErrUnknownEnum)
}

func TestParseMediumKindRoundTrip(t *testing.T) {
	for _, k := range []MediumKind{MediumText, MediumRecording, MediumInteractive, MediumQuestionnaire} {
		parsed, err := ParseMediumKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseMediumKind("hologram")
	assert.ErrorIs(t, err, ErrUnknownEnum)
}

func TestTimecode(t *testing.T) {
	tc, err := ParseTimecode("01:23:45")
	require.NoError(t, err)
	assert.Equal(t, Timecode{Hour: 1, Minute: 23, Second: 45}, tc)
	assert.Equal(t, "01:23:45", tc.String())

	for _, bad := range []string{"", "1:23:45", "01:23", "aa:bb:cc", "24:00:00", "00:60:00", "00:00:60", "01:23:45 "} {
		_, err := ParseTimecode(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestMediumVariantKinds(t *testing.T) {
	assert.Equal(t, MediumText, TextMedium{Page: 12, Line: 3}.Kind())
	assert.Equal(t, MediumRecording, RecordingMedium{}.Kind())
	assert.Equal(t, MediumInteractive, InteractiveMedium{URL: "https://example.org"}.Kind())
	assert.Equal(t, MediumQuestionnaire, QuestionnaireMedium{Question: 4}.Kind())
}
