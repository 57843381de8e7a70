package assembly_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"github.com/txix-open/isp-kit/http/httpcli"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/test"
	"request-rate-service/assembly"
	"request-rate-service/conf"
	"request-rate-service/domain"
	"request-rate-service/presenter"
)

type HappyPathTestSuite struct {
	suite.Suite
}

func TestHappyPath(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(HappyPathTestSuite))
}

type env struct {
	srv     *httptest.Server
	cli     *httpcli.Client
	locator assembly.Config
	global  string
	ranking string
}

func (s *HappyPathTestSuite) newEnv(test *test.Test) *env {
	e := &env{cli: httpcli.New()}
	e.locator = assembly.NewLocator(test.Logger(), assembly.ModuleName, "1.0.0", nil).Config(
		conf.Local{Logging: conf.Logging{RequestLogEnable: true}},
		presenter.Lines(func(globalLine string, rankingText string) {
			e.global = globalLine
			e.ranking = rankingText
		}),
	)
	e.srv = httptest.NewServer(e.locator.Handler)
	s.T().Cleanup(func() {
		_ = e.locator.Board.Close()
		e.srv.Close()
	})
	return e
}

func (s *HappyPathTestSuite) get(e *env, path string) (int, string) {
	resp, err := e.cli.Get(e.srv.URL + path).Do(context.Background())
	s.Require().NoError(err)
	defer resp.Close()
	body, err := resp.BodyCopy()
	s.Require().NoError(err)
	return resp.StatusCode(), string(body)
}

func (s *HappyPathTestSuite) TestGreetingAndNames() {
	test, require := test.New(s.T())
	e := s.newEnv(test)

	code, body := s.get(e, "/")
	require.EqualValues(http.StatusOK, code)
	require.EqualValues("Salut 127.0.0.1 !", body)

	code, body = s.get(e, "/nom/Alice")
	require.EqualValues(http.StatusOK, code)
	require.EqualValues("Salut Alice !", body)

	_, body = s.get(e, "/")
	require.EqualValues("Salut Alice !", body)

	require.True(e.locator.Ticker.Tick(context.Background()))
	require.EqualValues("Per second : 3 (max=3)", e.global)
	require.EqualValues("1. Alice : 3 (max=3)", e.ranking)
}

func (s *HappyPathTestSuite) TestStatusDoesNotRecord() {
	test, require := test.New(s.T())
	e := s.newEnv(test)

	code, body := s.get(e, "/status")
	require.EqualValues(http.StatusOK, code)
	require.EqualValues("module: request-rate-service\nversion: 1.0.0\nstatus: ok\n", body)
	require.Contains(body, "\n")

	require.True(e.locator.Ticker.Tick(context.Background()))
	require.EqualValues("Per second : 0 (max=0)", e.global)
	require.Empty(e.ranking)
}

func (s *HappyPathTestSuite) TestUnknownRoute() {
	test, require := test.New(s.T())
	e := s.newEnv(test)

	code, _ := s.get(e, "/unknown")
	require.EqualValues(http.StatusNotFound, code)

	resp, err := e.cli.Post(e.srv.URL + "/").Do(context.Background())
	require.NoError(err)
	resp.Close()
	require.EqualValues(http.StatusMethodNotAllowed, resp.StatusCode())
}

func (s *HappyPathTestSuite) TestStatsSnapshot() {
	test, require := test.New(s.T())
	e := s.newEnv(test)

	for i := 0; i < 4; i++ {
		s.get(e, "/")
	}
	require.True(e.locator.Ticker.Tick(context.Background()))

	code, body := s.get(e, "/stats")
	require.EqualValues(http.StatusOK, code)

	view := domain.StatsView{}
	require.NoError(json.Unmarshal([]byte(body), &view))
	require.EqualValues(4, view.Current)
	require.EqualValues(4, view.Peak)
	require.EqualValues("Per second : 4 (max=4)", view.GlobalLine)
	require.Len(view.Ranking, 1)
	require.EqualValues("127.0.0.1", view.Ranking[0].Address)
	require.EqualValues(4, view.Ranking[0].Current)
}

func (s *HappyPathTestSuite) TestStatsStream() {
	test, require := test.New(s.T())
	e := s.newEnv(test)

	wsUrl := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/stats/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsUrl, nil)
	require.NoError(err)
	defer conn.Close()

	read := func() domain.StatsView {
		require.NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(err)
		view := domain.StatsView{}
		require.NoError(json.Unmarshal(data, &view))
		return view
	}

	initial := read()
	require.EqualValues("Per second : 0 (max=0)", initial.GlobalLine)
	require.Eventually(func() bool {
		return e.locator.Board.Subscribers() == 1
	}, 2*time.Second, 10*time.Millisecond)

	s.get(e, "/nom/Bob")
	require.True(e.locator.Ticker.Tick(context.Background()))

	update := read()
	require.EqualValues("Per second : 1 (max=1)", update.GlobalLine)
	require.EqualValues("1. Bob : 1 (max=1)", update.RankingText)

	require.NoError(conn.Close())
	require.Eventually(func() bool {
		return e.locator.Board.Subscribers() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
