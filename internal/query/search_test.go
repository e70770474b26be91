package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/brainkit/internal/brainapi"
	"github.com/abhisek/brainkit/internal/debounce"
)

func newTestSearch(t *testing.T, mock *brainapi.MockDoer, p SearchParams) (*Search, *debounce.ManualClock) {
	t.Helper()
	clock := debounce.NewManualClock(time.Unix(0, 0))
	s := NewSearch(newClient(mock), p, WithClock(clock))
	t.Cleanup(s.Close)
	return s, clock
}

func TestSearch_DebounceSendsLastQuery(t *testing.T) {
	mock := brainapi.NewMockDoer(brainapi.MockResponse{
		Body: `{"results":[{"id":"course-2","type":"course","title":"Advanced Memory Architectures","relevanceScore":0.87}]}`,
	})
	s, clock := newTestSearch(t, mock, SearchParams{UserContext: map[string]string{"level": "advanced"}})

	for _, q := range []string{"m", "me", "mem", "memory"} {
		s.SetQuery(q)
		clock.Advance(100 * time.Millisecond)
	}
	assert.Equal(t, 0, mock.CallCount())
	assert.False(t, s.State().Loading)

	clock.Advance(200 * time.Millisecond)
	s.Wait()

	require.Equal(t, 1, mock.CallCount())
	assert.JSONEq(t, `{"query":"memory","user_context":{"level":"advanced"}}`, string(mock.LastCall().Body))

	st := s.State()
	require.Len(t, st.Data, 1)
	assert.Equal(t, brainapi.ResultCourse, st.Data[0].Type)
	assert.Equal(t, "memory", s.Query())
}

func TestSearch_DefaultDelay(t *testing.T) {
	mock := brainapi.NewMockDoer(brainapi.MockResponse{Body: `{"results":[]}`})
	s, clock := newTestSearch(t, mock, SearchParams{})

	s.SetQuery("vector")
	clock.Advance(DefaultSearchDelay - time.Millisecond)
	assert.Equal(t, 0, mock.CallCount())

	clock.Advance(time.Millisecond)
	s.Wait()
	assert.Equal(t, 1, mock.CallCount())
}

func TestSearch_ClearIsSynchronousAndSilent(t *testing.T) {
	mock := brainapi.NewMockDoer(brainapi.MockResponse{
		Body: `{"results":[{"id":"r1","type":"module","title":"Vector Memory Systems","relevanceScore":0.7}]}`,
	})
	s, clock := newTestSearch(t, mock, SearchParams{})

	s.SetQuery("vector")
	clock.Advance(DefaultSearchDelay)
	s.Wait()
	require.Len(t, s.State().Data, 1)

	s.SetQuery("")
	st := s.State()
	assert.Nil(t, st.Data)
	assert.False(t, st.Loading)
	assert.NoError(t, st.Err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestSearch_BlankQueryCancelsPending(t *testing.T) {
	mock := brainapi.NewMockDoer()
	s, clock := newTestSearch(t, mock, SearchParams{})

	s.SetQuery("neural")
	s.SetQuery("   ")
	clock.Advance(time.Second)
	s.Wait()

	assert.Equal(t, 0, mock.CallCount())
	assert.Equal(t, 0, clock.Pending())
	assert.Nil(t, s.State().Data)
}

func TestSearch_Disabled(t *testing.T) {
	mock := brainapi.NewMockDoer()
	s, clock := newTestSearch(t, mock, SearchParams{Disabled: true})

	s.SetQuery("memory")
	clock.Advance(time.Second)
	s.Wait()
	assert.Equal(t, 0, mock.CallCount())

	_, err := s.Suggestions(context.Background(), "mem", 5)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestSearch_ErrorResetsResults(t *testing.T) {
	mock := brainapi.NewMockDoer(
		brainapi.MockResponse{Body: `{"results":[{"id":"r1","type":"course","title":"x","relevanceScore":0.5}]}`},
		brainapi.MockResponse{Status: 500},
	)
	s, clock := newTestSearch(t, mock, SearchParams{Delay: 50 * time.Millisecond})

	s.SetQuery("x")
	clock.Advance(50 * time.Millisecond)
	s.Wait()
	require.Len(t, s.State().Data, 1)

	s.SetQuery("xy")
	clock.Advance(50 * time.Millisecond)
	s.Wait()
	assert.Nil(t, s.State().Data)
	assert.Equal(t, "HTTP error! status: 500", s.State().ErrorMessage())
}

func TestSearch_SetParamsResearches(t *testing.T) {
	mock := brainapi.NewMockDoer(
		brainapi.MockResponse{Body: `{"results":[]}`},
		brainapi.MockResponse{Body: `{"results":[]}`},
	)
	s, clock := newTestSearch(t, mock, SearchParams{})

	s.SetQuery("memory")
	clock.Advance(DefaultSearchDelay)
	s.Wait()

	s.SetParams(SearchParams{UserContext: map[string]string{"course": "course-1"}})
	clock.Advance(DefaultSearchDelay)
	s.Wait()

	require.Equal(t, 2, mock.CallCount())
	assert.JSONEq(t, `{"query":"memory","user_context":{"course":"course-1"}}`, string(mock.LastCall().Body))
}

func TestSearch_Suggestions(t *testing.T) {
	mock := brainapi.NewMockDoer(brainapi.MockResponse{Body: `{"suggestions":["memory systems","memory optimization"]}`})
	s, _ := newTestSearch(t, mock, SearchParams{})

	got, err := s.Suggestions(context.Background(), " mem ", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"memory systems", "memory optimization"}, got)
	assert.JSONEq(t, `{"query":"mem","limit":2}`, string(mock.LastCall().Body))

	got, err = s.Suggestions(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, mock.CallCount())
}

func TestSearch_CloseStopsPending(t *testing.T) {
	mock := brainapi.NewMockDoer()
	clock := debounce.NewManualClock(time.Unix(0, 0))
	s := NewSearch(newClient(mock), SearchParams{}, WithClock(clock))

	s.SetQuery("memory")
	s.Close()
	clock.Advance(time.Second)
	s.Wait()
	assert.Equal(t, 0, mock.CallCount())
}
