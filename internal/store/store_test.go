package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"textproc/internal/apperrors"
	"textproc/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st := New(filepath.Join(t.TempDir(), "db.json"), zap.NewNop())
	require.NoError(t, st.Initialize())
	return st
}

func sentimentResult(label string, score float64) models.TaskResult {
	return models.TaskResult{Sentiment: &models.LabelScore{Label: label, Score: score}}
}

func TestInitializeSeedsOnFirstRun(t *testing.T) {
	st := newTestStore(t)

	samples, err := st.GetSamples("", "")
	require.NoError(t, err)
	assert.NotEmpty(t, samples)

	stats, err := st.Statistics()
	require.NoError(t, err)
	assert.Equal(t, len(samples), stats.TotalSamples)
	assert.Equal(t, 0, stats.TotalResults)
	assert.Contains(t, stats.SamplesByLanguage, "en")
	assert.Contains(t, stats.SamplesByLanguage, "es")
}

func TestInitializeIdempotent(t *testing.T) {
	st := newTestStore(t)

	_, err := st.AddSample("extra sample", "en", "test")
	require.NoError(t, err)

	before, err := st.Statistics()
	require.NoError(t, err)

	require.NoError(t, st.Initialize())

	after, err := st.Statistics()
	require.NoError(t, err)
	assert.Equal(t, before.TotalSamples, after.TotalSamples)
	assert.Equal(t, before.TotalResults, after.TotalResults)
}

func TestAddSampleRejectsEmptyText(t *testing.T) {
	st := newTestStore(t)

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := st.AddSample(text, "en", "test")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	}
}

func TestAddSampleDefaults(t *testing.T) {
	st := newTestStore(t)

	sample, err := st.AddSample("some text", "", "")
	require.NoError(t, err)
	assert.Equal(t, "auto", sample.Language)
	assert.Equal(t, "general", sample.Category)
	assert.False(t, sample.Created.IsZero())
}

func TestSamplesRoundTripInsertionOrder(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "db.json"), zap.NewNop())
	require.NoError(t, st.Initialize())

	seeded, err := st.GetSamples("", "")
	require.NoError(t, err)

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		_, err := st.AddSample(text, "en", "order")
		require.NoError(t, err)
	}

	samples, err := st.GetSamples("", "")
	require.NoError(t, err)
	require.Len(t, samples, len(seeded)+len(texts))

	appended := samples[len(seeded):]
	for i, text := range texts {
		assert.Equal(t, text, appended[i].Text)
	}
}

func TestSampleFiltersAndSemantics(t *testing.T) {
	st := newTestStore(t)

	_, err := st.AddSample("hola otra vez", "es", "greeting")
	require.NoError(t, err)

	esSamples, err := st.GetSamples("es", "")
	require.NoError(t, err)
	require.NotEmpty(t, esSamples)
	for _, s := range esSamples {
		assert.Equal(t, "es", s.Language)
	}

	// Both filters must match.
	esGreetings, err := st.GetSamples("es", "greeting")
	require.NoError(t, err)
	require.Len(t, esGreetings, 1)
	assert.Equal(t, "hola otra vez", esGreetings[0].Text)

	// No match is an empty slice, not an error.
	none, err := st.GetSamples("zz", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAddResultValidation(t *testing.T) {
	st := newTestStore(t)
	conf := 0.9

	_, err := st.AddResult("", "en", models.TaskSentiment, sentimentResult("POSITIVE", 0.9), &conf)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = st.AddResult("text", "en", models.Task("translation"), sentimentResult("POSITIVE", 0.9), &conf)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	tooHigh := 1.5
	_, err = st.AddResult("text", "en", models.TaskSentiment, sentimentResult("POSITIVE", 0.9), &tooHigh)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	negative := -0.1
	_, err = st.AddResult("text", "en", models.TaskSentiment, sentimentResult("POSITIVE", 0.9), &negative)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestResultIDsStrictlyIncreasing(t *testing.T) {
	st := newTestStore(t)
	conf := 0.5

	var last int64
	seen := make(map[int64]bool)
	for i := 0; i < 5; i++ {
		record, err := st.AddResult("text", "en", models.TaskSentiment, sentimentResult("NEUTRAL", 0.5), &conf)
		require.NoError(t, err)
		assert.Greater(t, record.ID, last)
		assert.False(t, seen[record.ID])
		seen[record.ID] = true
		last = record.ID
	}
}

func TestGetResultsFilters(t *testing.T) {
	st := newTestStore(t)
	conf := 0.8

	_, err := st.AddResult("english text", "en", models.TaskSentiment, sentimentResult("POSITIVE", 0.8), &conf)
	require.NoError(t, err)
	_, err = st.AddResult("texto español", "es", models.TaskSentiment, sentimentResult("NEGATIVE", 0.8), &conf)
	require.NoError(t, err)
	_, err = st.AddResult("entities here", "en", models.TaskNER, models.TaskResult{Entities: []models.Entity{}}, nil)
	require.NoError(t, err)

	byTask, err := st.GetResults(models.TaskSentiment, "")
	require.NoError(t, err)
	assert.Len(t, byTask, 2)

	byBoth, err := st.GetResults(models.TaskSentiment, "es")
	require.NoError(t, err)
	require.Len(t, byBoth, 1)
	assert.Equal(t, "texto español", byBoth[0].Text)

	all, err := st.GetResults("", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStatisticsGroupedCounts(t *testing.T) {
	st := newTestStore(t)
	conf := 0.7

	_, err := st.AddResult("a", "en", models.TaskSentiment, sentimentResult("POSITIVE", 0.7), &conf)
	require.NoError(t, err)
	_, err = st.AddResult("b", "en", models.TaskClassification,
		models.TaskResult{Classification: []models.LabelScore{{Label: "economy", Score: 0.7}}}, &conf)
	require.NoError(t, err)
	_, err = st.AddResult("c", "en", models.TaskSentiment, sentimentResult("NEGATIVE", 0.7), &conf)
	require.NoError(t, err)

	stats, err := st.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalResults)
	assert.Equal(t, 2, stats.ResultsByTask[models.TaskSentiment])
	assert.Equal(t, 1, stats.ResultsByTask[models.TaskClassification])
}

func TestCorruptBackingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	st := New(path, zap.NewNop())

	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0o644))
	_, err := st.GetSamples("", "")
	assert.ErrorIs(t, err, apperrors.ErrStoreCorrupt)

	// Valid JSON but missing the metadata block is also corrupt.
	require.NoError(t, os.WriteFile(path, []byte(`{"text_samples": []}`), 0o644))
	_, err = st.GetSamples("", "")
	assert.ErrorIs(t, err, apperrors.ErrStoreCorrupt)

	// Initialize on a corrupt file must not silently re-seed.
	err = st.Initialize()
	assert.ErrorIs(t, err, apperrors.ErrStoreCorrupt)
}

func TestAddResultSaveFailureReturnsNoRecord(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses file permission checks")
	}

	path := filepath.Join(t.TempDir(), "db.json")
	st := New(path, zap.NewNop())
	require.NoError(t, st.Initialize())

	// Make the rewrite fail while loads still succeed.
	require.NoError(t, os.Chmod(path, 0o444))
	t.Cleanup(func() { _ = os.Chmod(path, 0o644) })

	conf := 0.9
	record, err := st.AddResult("text", "en", models.TaskSentiment, sentimentResult("POSITIVE", 0.9), &conf)
	require.Error(t, err)
	assert.Nil(t, record)

	stats, statsErr := st.Statistics()
	require.NoError(t, statsErr)
	assert.Equal(t, 0, stats.TotalResults)
}

func TestMissingBackingFileIsCorrupt(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "never-created.json"), zap.NewNop())

	_, err := st.GetSamples("", "")
	assert.ErrorIs(t, err, apperrors.ErrStoreCorrupt)
	assert.Contains(t, err.Error(), "run Initialize first")

	_, err = st.AddSample("text", "en", "test")
	assert.ErrorIs(t, err, apperrors.ErrStoreCorrupt)
}

func TestResetIsAllOrNothing(t *testing.T) {
	st := newTestStore(t)
	conf := 0.6

	_, err := st.AddSample("doomed sample", "en", "test")
	require.NoError(t, err)
	_, err = st.AddResult("doomed result", "en", models.TaskSentiment, sentimentResult("POSITIVE", 0.6), &conf)
	require.NoError(t, err)

	require.NoError(t, st.Reset())

	stats, err := st.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalResults)

	samples, err := st.GetSamples("", "")
	require.NoError(t, err)
	for _, s := range samples {
		assert.NotEqual(t, "doomed sample", s.Text)
	}
}
