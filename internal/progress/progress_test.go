package progress_test

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/osallek/osa-extractor/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetStep(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		steps []progress.Step

		want     progress.State
		wantLast bool
	}{
		"Initial state":       {want: progress.State{Stage: progress.None}},
		"Stage":               {steps: []progress.Step{progress.ParsingGame}, want: progress.State{Stage: progress.ParsingGame}, wantLast: true},
		"Sub stage sets both": {steps: []progress.Step{progress.ParsingSaveCountries}, want: progress.State{Stage: progress.ParsingSave, SubStage: progress.ParsingSaveCountries, Percent: 50}, wantLast: true},
		"Stage clears sub stage": {
			steps:    []progress.Step{progress.ParsingSaveWars, progress.GeneratingData},
			want:     progress.State{Stage: progress.GeneratingData, Percent: 65},
			wantLast: true,
		},
		"Going back is ignored": {
			steps: []progress.Step{progress.SendingData, progress.ParsingGame},
			want:  progress.State{Stage: progress.SendingData, Percent: 90},
		},
		"Same step is ignored": {
			steps: []progress.Step{progress.ParsingSaveInfo, progress.ParsingSaveInfo},
			want:  progress.State{Stage: progress.ParsingSave, SubStage: progress.ParsingSaveInfo, Percent: 35},
		},
		"Parent stage of current sub stage is ignored": {
			steps: []progress.Step{progress.GeneratingDataCountries, progress.GeneratingData},
			want:  progress.State{Stage: progress.GeneratingData, SubStage: progress.GeneratingDataCountries, Percent: 75},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tr := progress.New()
			var last bool
			for _, s := range tc.steps {
				last = tr.SetStep(s)
			}

			assert.Equal(t, tc.want, tr.Snapshot(), "Unexpected state")
			assert.Equal(t, tc.wantLast, last, "Unexpected result of the last SetStep")
		})
	}
}

func TestAdvance(t *testing.T) {
	t.Parallel()

	tr := progress.New()

	tr.Advance(progress.ParsingGame, 0.5)
	assert.Equal(t, progress.State{Stage: progress.ParsingGame, Percent: 17}, tr.Snapshot(), "Advance should start a new step")

	tr.Advance(progress.ParsingGame, 0.2)
	assert.Equal(t, 17, tr.Snapshot().Percent, "Progress should never go back")

	tr.Advance(progress.ParsingGame, 3)
	assert.Equal(t, 35, tr.Snapshot().Percent, "Fraction should be capped")

	tr.SetStep(progress.GeneratingData)
	for i := 1; i <= 10; i++ {
		tr.Advance(progress.GeneratingDataCountries, float64(i)/10)
		assert.Equal(t, 75+int(15*(float64(i)/10)), tr.Snapshot().Percent, "Unexpected progress after %d countries", i)
	}
	assert.Equal(t, 90, tr.Snapshot().Percent, "Every country done should reach the next floor")

	tr.Advance(progress.ParsingSave, 1)
	assert.Equal(t, progress.GeneratingDataCountries, tr.Snapshot().SubStage, "Advancing a past step should be ignored")
	assert.Equal(t, 90, tr.Snapshot().Percent, "Advancing a past step should be ignored")
}

func TestFailIsSticky(t *testing.T) {
	t.Parallel()

	tr := progress.New()
	tr.SetStep(progress.SendingData)

	tr.Fail("QUOTA_EXCEEDED")
	tr.SetStep(progress.Finished)
	tr.Advance(progress.Finished, 1)

	got := tr.Snapshot()
	assert.True(t, got.Error, "Error flag should stay set")
	assert.Equal(t, "QUOTA_EXCEEDED", got.ErrorCode)
	assert.Equal(t, progress.Finished, got.Stage, "Fail should not prevent later steps")
	assert.Empty(t, got.Link, "Only Finish should set the link")
}

func TestFinish(t *testing.T) {
	t.Parallel()

	tr := progress.New()
	tr.SetStep(progress.ParsingSaveWars)
	tr.Finish("https://example.com/save/1")

	assert.Equal(t, progress.State{Stage: progress.Finished, Percent: 100, Link: "https://example.com/save/1"}, tr.Snapshot())
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	tr := progress.New()
	ch, unsubscribe := tr.Subscribe()

	assert.Equal(t, progress.None, (<-ch).Stage, "Subscribe should deliver the current state")

	tr.SetStep(progress.ParsingGame)
	tr.SetStep(progress.ParsingSave)
	tr.SetStep(progress.GeneratingData)
	assert.Equal(t, progress.GeneratingData, (<-ch).Stage, "A slow reader should get the latest state")
	select {
	case s := <-ch:
		t.Fatalf("No state should be pending, got %v", s)
	default:
	}

	unsubscribe()
	unsubscribe()
	_, ok := <-ch
	assert.False(t, ok, "Channel should be closed after unsubscribing")

	tr.SetStep(progress.SendingData)
	assert.Equal(t, progress.SendingData, tr.Snapshot().Stage, "Tracker should work without subscribers")
}

func TestClose(t *testing.T) {
	t.Parallel()

	tr := progress.New()
	ch, unsubscribe := tr.Subscribe()
	<-ch

	tr.Close()
	tr.Close()
	_, ok := <-ch
	assert.False(t, ok, "Channel should be closed with the tracker")
	unsubscribe()

	late, _ := tr.Subscribe()
	s, ok := <-late
	require.True(t, ok, "A late subscriber should still get the current state")
	assert.Equal(t, progress.None, s.Stage)
	_, ok = <-late
	assert.False(t, ok, "A late subscriber channel should be closed")

	tr.Finish("link")
	assert.Equal(t, "link", tr.Snapshot().Link, "Closing should not freeze the state")
}

func TestConcurrentUpdates(t *testing.T) {
	t.Parallel()

	tr := progress.New()
	ch, unsubscribe := tr.Subscribe()
	defer unsubscribe()

	tr.SetStep(progress.GeneratingData)
	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Advance(progress.GeneratingDataCountries, float64(i)/100)
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		prev := 0
		for s := range ch {
			assert.GreaterOrEqual(t, s.Percent, prev, "Published progress should never go back")
			prev = s.Percent
			if s.Percent == 90 {
				return
			}
		}
	}()
	wg.Wait()
	<-done

	assert.Equal(t, 90, tr.Snapshot().Percent)
}

func TestStateJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(progress.State{Stage: progress.ParsingSave, SubStage: progress.ParsingSaveWars, Percent: 60})
	require.NoError(t, err, "Marshal should not return an error")
	assert.JSONEq(t, `{"stage":"PARSING_SAVE","subStage":"PARSING_SAVE_WARS","percent":60,"error":false}`, string(b))

	var s progress.State
	require.NoError(t, json.Unmarshal(b, &s), "Unmarshal should not return an error")
	assert.Equal(t, progress.ParsingSaveWars, s.SubStage)
}

func TestLabel(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		step   progress.Step
		locale string

		want string
	}{
		"English":                 {step: progress.SendingData, locale: "en", want: "Sending data"},
		"Regional English":        {step: progress.Finished, locale: "en-GB", want: "Finished"},
		"French":                  {step: progress.SendingData, locale: "fr", want: "Envoi des données"},
		"Regional French":         {step: progress.GeneratingDataCountries, locale: "fr-CA", want: "Génération des pays"},
		"Unsupported falls back":  {step: progress.ParsingGame, locale: "de", want: "Reading game data"},
		"Empty locale is English": {step: progress.ParsingGame, want: "Reading game data"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, progress.Label(tc.step, tc.locale))
		})
	}
}

func TestLabelCoversEveryStep(t *testing.T) {
	t.Parallel()

	steps := []progress.Step{
		progress.None, progress.ParsingGame, progress.ParsingSave, progress.ParsingSaveInfo,
		progress.ParsingSaveProvinces, progress.ParsingSaveCountries, progress.ParsingSaveWars,
		progress.GeneratingData, progress.GeneratingDataCountries, progress.SendingData, progress.Finished,
	}
	for _, step := range steps {
		for _, locale := range []string{"en", "fr"} {
			got := progress.Label(step, locale)
			assert.NotEmpty(t, got, "%s should have a %s label", step, locale)
			assert.NotEqual(t, step.String(), got, "%s should be translated in %s, not shown as its key", step, locale)
		}
	}
}
