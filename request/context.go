package request

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type Context struct {
	request        *http.Request
	responseWriter http.ResponseWriter

	endpoint      string
	sourceAddress string
}

func NewContext(request *http.Request, response http.ResponseWriter, endpoint string) *Context {
	return &Context{
		request:        request,
		responseWriter: response,
		endpoint:       endpoint,
		sourceAddress:  SourceAddress(request.RemoteAddr),
	}
}

func (c *Context) Request() *http.Request {
	return c.request
}

func (c *Context) ResponseWriter() http.ResponseWriter {
	return c.responseWriter
}

func (c *Context) SetResponseWriter(writer http.ResponseWriter) {
	c.responseWriter = writer
}

func (c *Context) Endpoint() string {
	return c.endpoint
}

func (c *Context) SourceAddress() string {
	return c.sourceAddress
}

func (c *Context) Context() context.Context {
	return c.request.Context()
}

func (c *Context) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}

// PathVar returns a route variable, empty if the route doesn't declare it.
func (c *Context) PathVar(name string) string {
	return mux.Vars(c.request)[name]
}

// SourceAddress extracts the peer ip from a "host:port" remote address.
// Anything unparsable becomes an empty string.
func SourceAddress(remoteAddr string) string {
	remoteAddr = strings.TrimSpace(remoteAddr)
	if remoteAddr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = strings.Trim(remoteAddr, "[]")
	}
	if net.ParseIP(host) == nil {
		return ""
	}
	return host
}
