// Package daemon implements the always-on TCP service speaking the
// legacy hddtemp wire protocol: connecting is the request, the reply is
// one payload rendered from the current cache snapshot, then the
// connection is closed.
package daemon

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"codeberg.org/mutker/disktempd/internal/cache"
	"codeberg.org/mutker/disktempd/internal/errors"
	"codeberg.org/mutker/disktempd/internal/logger"
)

const writeTimeout = 10 * time.Second

type Config struct {
	Listen    string
	Port      int
	Network   string // "tcp", "tcp4" or "tcp6"
	Separator string
}

// Server accepts connections and serves cached readings. Handling a
// connection never blocks on a cache refresh: it reads the last
// completed snapshot only.
type Server struct {
	cfg      Config
	cache    *cache.Cache
	listener net.Listener
	wg       sync.WaitGroup
}

func New(cfg Config, c *cache.Cache) *Server {
	if cfg.Network == "" {
		cfg.Network = "tcp"
	}

	return &Server{
		cfg:   cfg,
		cache: c,
	}
}

// Listen binds the configured address. Failure to bind is the only
// startup-fatal condition in the daemon.
func (s *Server) Listen() error {
	errFactory := errors.New()

	addr := net.JoinHostPort(s.cfg.Listen, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen(s.cfg.Network, addr)
	if err != nil {
		return errFactory.Wrap(errors.ErrBindFailed, err)
	}
	s.listener = listener

	logger.Info().
		Str("address", listener.Addr().String()).
		Msg("Listening for connections")

	return nil
}

// Addr returns the bound address. Only valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until ctx is canceled, handling each in its
// own goroutine. On shutdown the listener is closed first, then
// in-flight connection writes are allowed to finish.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			logger.Warn().Err(err).Msg("Transient accept failure")
			continue
		}

		s.wg.Add(1)
		go s.handle(conn)
	}
}

// ListenAndServe binds the configured address and serves until ctx is
// canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	return s.Serve(ctx)
}

// handle serves one connection: snapshot, format, write, close. No
// request body is read from the client.
func (s *Server) handle(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	errFactory := errors.New()

	snapshot, err := s.cache.Snapshot()
	if err != nil {
		// Startup performs a synchronous first fill before serving, so
		// this only happens if the server is wired up out of order.
		logger.Warn().Err(err).Msg("No snapshot available for connection")
		return
	}

	payload := FormatPayload(snapshot.Readings, s.cfg.Separator)

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := conn.Write([]byte(payload)); err != nil {
		logger.ErrorWithCode(errFactory.Wrap(errors.ErrConnWrite, err)).
			Str("remote", conn.RemoteAddr().String()).
			Msg("Dropping client connection")
	}
}
