package internal

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func GenerateId() string {
	return uuid.Must(uuid.NewRandom()).String()
}

// Envs converts KEY=VALUE pairs (e.g. os.Environ()) into a map, values may
// contain '='
func Envs(environ []string) map[string]string {
	envs := make(map[string]string, len(environ))
	for _, env := range environ {
		if s := strings.Split(env, "="); len(s) > 1 {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
	return envs
}

// LaunchContext returns a context that's cancelled when a signal is received
// on osSignal or when the returned cancel function is called
func LaunchContext(wg *sync.WaitGroup, osSignal chan os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()

		select {
		case <-ctx.Done():
		case <-osSignal:
		}
	}()
	return ctx, cancel
}

// DoRequest executes a request, marshalling input to json when it's not
// already a []byte; non-2xx status codes aren't treated as errors
func DoRequest(ctx context.Context, client *http.Client, uri, method string, input any) (int, []byte, error) {
	var body io.Reader

	switch v := input.(type) {
	case nil:
	case []byte:
		body = bytes.NewReader(v)
	default:
		byts, err := json.Marshal(input)
		if err != nil {
			return -1, nil, err
		}
		body = bytes.NewReader(byts)
	}
	request, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return -1, nil, err
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if correlationId := CorrelationIdFromCtx(ctx); correlationId != "" {
		request.Header.Set("Correlation-Id", correlationId)
	}
	response, err := client.Do(request)
	if err != nil {
		return -1, nil, err
	}
	defer response.Body.Close()
	byts, err := io.ReadAll(response.Body)
	if err != nil {
		return response.StatusCode, nil, errors.Wrap(err, "reading response body")
	}
	return response.StatusCode, byts, nil
}

func GetCertificates(certFile, keyFile string) ([]tls.Certificate, error) {
	if certFile == "" || keyFile == "" {
		return []tls.Certificate{}, nil
	}
	bytesCert, err := os.ReadFile(certFile)
	if err != nil {
		return nil, err
	}
	bytesKey, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, err
	}
	certificate, err := tls.X509KeyPair(bytesCert, bytesKey)
	if err != nil {
		return nil, err
	}
	return []tls.Certificate{certificate}, nil
}

func GetCaCert(caCertFile string) (*x509.CertPool, error) {
	caCertPool := x509.NewCertPool()
	if caCertFile == "" {
		return caCertPool, nil
	}
	bytes, err := os.ReadFile(caCertFile)
	if err != nil {
		return nil, err
	}
	caCertPool.AppendCertsFromPEM(bytes)
	return caCertPool, nil
}

// GetTlsConfig returns nil (without error) when no certificate is configured
func GetTlsConfig(certFile, keyFile, caCertFile string) (*tls.Config, error) {
	if certFile == "" || keyFile == "" {
		return nil, nil
	}
	caCertPool, err := GetCaCert(caCertFile)
	if err != nil {
		return nil, err
	}
	certificates, err := GetCertificates(certFile, keyFile)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		// TLS versions below 1.2 are considered insecure
		// see https://www.rfc-editor.org/rfc/rfc7525.txt for details
		MinVersion:   tls.VersionTLS12,
		RootCAs:      caCertPool,
		ClientCAs:    caCertPool,
		Certificates: certificates,
	}, nil
}

// GetServerTlsConfig is GetTlsConfig for a listener; when a ca is configured
// clients must present a certificate signed by it
func GetServerTlsConfig(certFile, keyFile, caCertFile string) (*tls.Config, error) {
	tlsConfig, err := GetTlsConfig(certFile, keyFile, caCertFile)
	if err != nil || tlsConfig == nil {
		return nil, err
	}
	if caCertFile != "" {
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return tlsConfig, nil
}
