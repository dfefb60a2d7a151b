package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fega/portfolio"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2020-01-02 and 2020-01-03 08:00 London, a null close on 2020-01-06.
const chart = `{"chart":{"result":[{
	"meta":{"currency":"USD","symbol":"EIMI.L","gmtoffset":0,"exchangeTimezoneName":"Europe/London"},
	"timestamp":[1577952000,1578038400,1578297600],
	"indicators":{"quote":[{"close":[29.385000228881836,29.1200008392334,null]}]}
}],"error":null}}`

const tokyo = `{"chart":{"result":[{
	"meta":{"currency":"JPY","symbol":"7203.T","gmtoffset":32400},
	"timestamp":[1578006000],
	"indicators":{"quote":[{"close":[7439]}]}
}],"error":null}}`

const empty = `{"chart":{"result":[{"meta":{"currency":"USD","symbol":"EIMI.L","gmtoffset":0},"indicators":{"quote":[{}]}}],"error":null}}`

func newServer(t *testing.T, body string, status int) (*httptest.Server, *[]*http.Request) {
	t.Helper()
	var reqs []*http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs = append(reqs, r)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func TestFetchDailyCloses(t *testing.T) {
	srv, reqs := newServer(t, chart, http.StatusOK)
	s := New(srv.Client(), srv.URL, zerolog.Nop())

	from, to := portfolio.NewDate(2020, 1, 1), portfolio.NewDate(2020, 1, 6)
	got, err := s.FetchDailyCloses(context.Background(), "EIMI.L", from, to)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, portfolio.NewDate(2020, 1, 2), got[0].Date)
	assert.Equal(t, "29.385", got[0].Close.String())
	assert.Equal(t, portfolio.NewDate(2020, 1, 3), got[1].Date)
	assert.Equal(t, "29.12", got[1].Close.String())

	require.Len(t, *reqs, 1)
	r := (*reqs)[0]
	assert.Equal(t, "/v8/finance/chart/EIMI.L", r.URL.Path)
	assert.Equal(t, "1577836800", r.URL.Query().Get("period1"))
	assert.Equal(t, "1578355200", r.URL.Query().Get("period2"))
	assert.Equal(t, "1d", r.URL.Query().Get("interval"))
}

func TestFetchDailyClosesFiltersRange(t *testing.T) {
	srv, _ := newServer(t, chart, http.StatusOK)
	s := New(srv.Client(), srv.URL, zerolog.Nop())

	day := portfolio.NewDate(2020, 1, 3)
	got, err := s.FetchDailyCloses(context.Background(), "EIMI.L", day, day)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, day, got[0].Date)
}

func TestGMTOffset(t *testing.T) {
	// 2020-01-02 23:00 UTC is the 3rd in Tokyo.
	srv, _ := newServer(t, tokyo, http.StatusOK)
	s := New(srv.Client(), srv.URL, zerolog.Nop())

	got, err := s.FetchDailyCloses(context.Background(), "7203.T", portfolio.NewDate(2020, 1, 1), portfolio.NewDate(2020, 1, 10))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, portfolio.NewDate(2020, 1, 3), got[0].Date)
	assert.Equal(t, "7439", got[0].Close.String())
}

func TestNoTradingDay(t *testing.T) {
	srv, _ := newServer(t, empty, http.StatusOK)
	s := New(srv.Client(), srv.URL, zerolog.Nop())

	got, err := s.FetchDailyCloses(context.Background(), "EIMI.L", portfolio.NewDate(2020, 1, 4), portfolio.NewDate(2020, 1, 5))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnknownSymbol(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`
	for _, status := range []int{http.StatusOK, http.StatusNotFound} {
		srv, _ := newServer(t, body, status)
		s := New(srv.Client(), srv.URL, zerolog.Nop())

		_, err := s.FetchDailyCloses(context.Background(), "NOPE", portfolio.NewDate(2020, 1, 1), portfolio.NewDate(2020, 1, 5))
		assert.ErrorIs(t, err, portfolio.ErrUnavailable, "status %d", status)
	}
}
