package internal_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"io"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/antonio-alexander/go-blog-crud/internal"

	"github.com/stretchr/testify/assert"
)

func TestEnvs(t *testing.T) {
	envs := internal.Envs([]string{
		"LOG_LEVEL=trace",
		"DATABASE_PASSWORD=pass=word",
		"EMPTY=",
		"MALFORMED",
	})
	assert.Equal(t, map[string]string{
		"LOG_LEVEL":         "trace",
		"DATABASE_PASSWORD": "pass=word",
		"EMPTY":             "",
	}, envs)
}

func TestCorrelationId(t *testing.T) {
	correlationId := internal.GenerateId()
	ctx := internal.CtxWithCorrelationId(context.TODO(), correlationId)
	assert.Equal(t, correlationId, internal.CorrelationIdFromCtx(ctx))
	assert.Empty(t, internal.CorrelationIdFromCtx(context.TODO()))
	assert.NotEqual(t, internal.GenerateId(), internal.GenerateId())
}

func TestLaunchContext(t *testing.T) {
	var wg sync.WaitGroup

	// signal cancels the context
	osSignal := make(chan os.Signal, 1)
	ctx, cancel := internal.LaunchContext(&wg, osSignal)
	defer cancel()
	osSignal <- os.Interrupt
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		assert.Fail(t, "context not cancelled by signal")
	}
	wg.Wait()

	// cancel also stops the goroutine
	ctx, cancel = internal.LaunchContext(&wg, make(chan os.Signal))
	cancel()
	<-ctx.Done()
	wg.Wait()
}

func TestDoRequest(t *testing.T) {
	type echo struct {
		Method        string `json:"method"`
		ContentType   string `json:"content_type"`
		CorrelationId string `json:"correlation_id"`
		Body          string `json:"body"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		bytes, _ := io.ReadAll(request.Body)
		if request.URL.Path == "/missing" {
			writer.WriteHeader(http.StatusNotFound)
		}
		_ = json.NewEncoder(writer).Encode(&echo{
			Method:        request.Method,
			ContentType:   request.Header.Get("Content-Type"),
			CorrelationId: request.Header.Get("Correlation-Id"),
			Body:          string(bytes),
		})
	}))
	defer server.Close()

	correlationId := internal.GenerateId()
	ctx := internal.CtxWithCorrelationId(context.TODO(), correlationId)

	// marshal input
	response := &echo{}
	statusCode, bytes, err := internal.DoRequest(ctx, server.Client(), server.URL,
		http.MethodPost, map[string]string{"name": "Ada"})
	assert.Nil(t, err)
	assert.Equal(t, http.StatusOK, statusCode)
	err = json.Unmarshal(bytes, response)
	assert.Nil(t, err)
	assert.Equal(t, http.MethodPost, response.Method)
	assert.Equal(t, "application/json", response.ContentType)
	assert.Equal(t, correlationId, response.CorrelationId)
	assert.JSONEq(t, `{"name":"Ada"}`, response.Body)

	// raw input
	response = &echo{}
	statusCode, bytes, err = internal.DoRequest(ctx, server.Client(), server.URL,
		http.MethodPut, []byte("{"))
	assert.Nil(t, err)
	assert.Equal(t, http.StatusOK, statusCode)
	err = json.Unmarshal(bytes, response)
	assert.Nil(t, err)
	assert.Equal(t, "{", response.Body)

	// non-2xx isn't an error
	response = &echo{}
	statusCode, bytes, err = internal.DoRequest(context.TODO(), server.Client(),
		server.URL+"/missing", http.MethodGet, nil)
	assert.Nil(t, err)
	assert.Equal(t, http.StatusNotFound, statusCode)
	err = json.Unmarshal(bytes, response)
	assert.Nil(t, err)
	assert.Empty(t, response.ContentType)
	assert.Empty(t, response.CorrelationId)

	// unreachable
	server.Close()
	statusCode, _, err = internal.DoRequest(context.TODO(), server.Client(),
		server.URL, http.MethodGet, nil)
	assert.NotNil(t, err)
	assert.Equal(t, -1, statusCode)
}

func TestGetTlsConfig(t *testing.T) {
	tlsConfig, err := internal.GetTlsConfig("", "", "")
	assert.Nil(t, err)
	assert.Nil(t, tlsConfig)

	_, err = internal.GetTlsConfig("/does/not/exist.crt", "/does/not/exist.key", "")
	assert.NotNil(t, err)
}

func writePem(t *testing.T, file, blockType string, bytes []byte) {
	f, err := os.Create(file)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to create pem file")
	}
	defer f.Close()
	err = pem.Encode(f, &pem.Block{Type: blockType, Bytes: bytes})
	assert.Nil(t, err)
}

// writeCertificates creates a ca and a certificate signed by it that's valid
// for 127.0.0.1 as both a server and a client
func writeCertificates(t *testing.T) (certFile, keyFile, caCertFile string) {
	dir := t.TempDir()
	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	assert.Nil(t, err)
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "go-blog-crud ca"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	caBytes, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate,
		&caKey.PublicKey, caKey)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to create ca certificate")
	}
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	assert.Nil(t, err)
	template := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "go-blog-crud"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
	}
	certBytes, err := x509.CreateCertificate(rand.Reader, template, caTemplate,
		&key.PublicKey, caKey)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to create certificate")
	}
	keyBytes, err := x509.MarshalECPrivateKey(key)
	assert.Nil(t, err)
	certFile = filepath.Join(dir, "server.crt")
	keyFile = filepath.Join(dir, "server.key")
	caCertFile = filepath.Join(dir, "ca.crt")
	writePem(t, certFile, "CERTIFICATE", certBytes)
	writePem(t, keyFile, "EC PRIVATE KEY", keyBytes)
	writePem(t, caCertFile, "CERTIFICATE", caBytes)
	return certFile, keyFile, caCertFile
}

func TestGetServerTlsConfig(t *testing.T) {
	certFile, keyFile, caCertFile := writeCertificates(t)

	t.Run("Client Auth", func(t *testing.T) {
		tlsConfig, err := internal.GetServerTlsConfig("", "", caCertFile)
		assert.Nil(t, err)
		assert.Nil(t, tlsConfig)

		// no ca, clients aren't verified
		tlsConfig, err = internal.GetServerTlsConfig(certFile, keyFile, "")
		assert.Nil(t, err)
		if assert.NotNil(t, tlsConfig) {
			assert.Equal(t, tls.NoClientCert, tlsConfig.ClientAuth)
		}

		tlsConfig, err = internal.GetServerTlsConfig(certFile, keyFile, caCertFile)
		assert.Nil(t, err)
		if assert.NotNil(t, tlsConfig) {
			assert.Equal(t, tls.RequireAndVerifyClientCert, tlsConfig.ClientAuth)
		}

		// the client side config is unchanged
		tlsConfig, err = internal.GetTlsConfig(certFile, keyFile, caCertFile)
		assert.Nil(t, err)
		if assert.NotNil(t, tlsConfig) {
			assert.Equal(t, tls.NoClientCert, tlsConfig.ClientAuth)
		}
	})

	t.Run("Handshake", func(t *testing.T) {
		serverTlsConfig, err := internal.GetServerTlsConfig(certFile, keyFile, caCertFile)
		if !assert.Nil(t, err) {
			assert.FailNow(t, "unable to get server tls config")
		}
		server := httptest.NewUnstartedServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusOK)
		}))
		server.TLS = serverTlsConfig
		server.StartTLS()
		defer server.Close()

		// a client without a certificate is rejected
		caCertPool, err := internal.GetCaCert(caCertFile)
		assert.Nil(t, err)
		client := &http.Client{Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
				RootCAs:    caCertPool,
			},
		}}
		statusCode, _, err := internal.DoRequest(context.TODO(), client, server.URL,
			http.MethodGet, nil)
		assert.NotNil(t, err)
		assert.Equal(t, -1, statusCode)

		// a client with a certificate signed by the ca is accepted
		clientTlsConfig, err := internal.GetTlsConfig(certFile, keyFile, caCertFile)
		assert.Nil(t, err)
		client = &http.Client{Transport: &http.Transport{
			TLSClientConfig: clientTlsConfig,
		}}
		statusCode, _, err = internal.DoRequest(context.TODO(), client, server.URL,
			http.MethodGet, nil)
		assert.Nil(t, err)
		assert.Equal(t, http.StatusOK, statusCode)
	})
}
