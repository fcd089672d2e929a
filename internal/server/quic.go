package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"fmt"
	"math/big"
	"net"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/zeusync/physim/internal/core/observability/log"
)

// QUICProtocol is the ALPN token of the QUIC frame stream.
const QUICProtocol = "physim-frames"

// Application error codes sent when the server closes a QUIC connection.
const (
	quicCodeGoingAway   quic.ApplicationErrorCode = 0x1
	quicCodeWriteFailed quic.ApplicationErrorCode = 0x2
)

// ListenQUIC opens a QUIC listener on addr with the configured certificate,
// or a self-signed one when none is configured.
func (s *Server) ListenQUIC(addr string) (*quic.Listener, error) {
	tlsConfig, err := s.quicTLSConfig()
	if err != nil {
		return nil, err
	}
	ln, err := quic.ListenAddr(addr, tlsConfig, &quic.Config{
		MaxIdleTimeout:        30 * time.Second,
		KeepAlivePeriod:       10 * time.Second,
		MaxIncomingStreams:    -1,
		MaxIncomingUniStreams: -1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	return ln, nil
}

// RunQUIC listens on the configured QUIC address and serves until ctx is
// cancelled.
func (s *Server) RunQUIC(ctx context.Context) error {
	ln, err := s.ListenQUIC(s.cfg.QUICAddr)
	if err != nil {
		return err
	}
	err = s.ServeQUIC(ctx, ln)
	if errors.Is(err, ErrServerClosed) && ctx.Err() != nil {
		// the HTTP side already shut the server down
		return nil
	}
	return err
}

// ServeQUIC streams the messages of /ws to QUIC peers. Every message is sent
// on its own unidirectional stream which the peer reads to EOF. ServeQUIC
// closes ln when ctx is cancelled; connected peers are closed by Shutdown.
func (s *Server) ServeQUIC(ctx context.Context, ln *quic.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = ln.Close()
		return ErrServerClosed
	}
	s.quicLn = ln
	s.mu.Unlock()
	defer ln.Close()

	s.logger.Info("quic listening", log.String("addr", ln.Addr().String()))

	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil || s.isClosed() || errors.Is(err, quic.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("accept quic connection: %w", err)
		}

		c := &client{send: make(chan []byte, s.cfg.SendBuffer)}
		if !s.register(c) {
			_ = conn.CloseWithError(quicCodeGoingAway, ErrServerClosed.Error())
			return nil
		}
		s.logger.Debug("quic client connected", log.String("remote", conn.RemoteAddr().String()))
		go s.watchQUIC(c, conn)
		go s.quicPump(c, conn)
	}
}

func (s *Server) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// watchQUIC unregisters c once the connection is gone.
func (s *Server) watchQUIC(c *client, conn *quic.Conn) {
	defer s.wg.Done()
	<-conn.Context().Done()
	s.unregister(c)
	s.logger.Debug("quic client disconnected", log.String("remote", conn.RemoteAddr().String()))
}

func (s *Server) quicPump(c *client, conn *quic.Conn) {
	defer s.wg.Done()

	for msg := range c.send {
		if err := s.writeQUIC(conn, msg); err != nil {
			s.logger.Debug("quic write failed", log.Error(err))
			s.unregister(c)
			_ = conn.CloseWithError(quicCodeWriteFailed, "write failed")
			return
		}
	}
	_ = conn.CloseWithError(quicCodeGoingAway, "")
}

func (s *Server) writeQUIC(conn *quic.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
	defer cancel()

	stream, err := conn.OpenUniStreamSync(ctx)
	if err != nil {
		return err
	}
	_ = stream.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if _, err := stream.Write(msg); err != nil {
		return err
	}
	return stream.Close()
}

func (s *Server) quicTLSConfig() (*tls.Config, error) {
	var cert tls.Certificate
	var err error
	if s.cfg.QUICCertFile != "" {
		cert, err = tls.LoadX509KeyPair(s.cfg.QUICCertFile, s.cfg.QUICKeyFile)
	} else {
		cert, err = selfSignedCertificate()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: quic certificate: %w", ErrInvalidConfig, err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{QUICProtocol},
		MinVersion:   tls.VersionTLS13,
	}, nil
}

// selfSignedCertificate is valid for localhost for one day.
func selfSignedCertificate() (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}
	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"physim"}},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		DNSNames:              []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}, nil
}
