package auth

import (
	"bytes"
	"crypto/cipher"
	"encoding/binary"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// Conn frames every Write as one sealed packet:
// length(4, big endian) | nonce(12) | ciphertext.
type Conn struct {
	net.Conn
	aead cipher.AEAD

	wmu     sync.Mutex
	sendCtr uint64

	rmu     sync.Mutex
	recvBuf bytes.Buffer
}

const (
	nonceLen      = chacha20poly1305.NonceSize
	maxPacketSize = 64 * 1024
)

// WrapConn encrypts conn with sessionKey.
func WrapConn(conn net.Conn, sessionKey []byte) (net.Conn, error) {
	aead, err := chacha20poly1305.New(sessionKey)
	if err != nil {
		return nil, err
	}
	return &Conn{Conn: conn, aead: aead}, nil
}

func (s *Conn) Write(p []byte) (int, error) {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	var nonce [nonceLen]byte
	binary.BigEndian.PutUint64(nonce[nonceLen-8:], s.sendCtr)
	s.sendCtr++

	pkt := make([]byte, 4, 4+nonceLen+len(p)+s.aead.Overhead())
	pkt = append(pkt, nonce[:]...)
	pkt = s.aead.Seal(pkt, nonce[:], p, nil)
	binary.BigEndian.PutUint32(pkt[:4], uint32(len(pkt)-4))

	if _, err := s.Conn.Write(pkt); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *Conn) Read(p []byte) (int, error) {
	s.rmu.Lock()
	defer s.rmu.Unlock()

	if s.recvBuf.Len() == 0 {
		var hdr [4]byte
		if n, err := io.ReadFull(s.Conn, hdr[:]); err != nil {
			return n, err
		}
		length := binary.BigEndian.Uint32(hdr[:])
		if length < nonceLen || length > maxPacketSize {
			return 0, io.ErrUnexpectedEOF
		}
		pkt := make([]byte, length)
		if n, err := io.ReadFull(s.Conn, pkt); err != nil {
			return n, err
		}
		pt, err := s.aead.Open(nil, pkt[:nonceLen], pkt[nonceLen:], nil)
		if err != nil {
			return 0, err
		}
		s.recvBuf.Write(pt)
	}
	return s.recvBuf.Read(p)
}
