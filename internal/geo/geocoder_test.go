package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json/01310100":
			w.Write([]byte(`{"cep":"01310100","lat":"-23.5613","lng":"-46.6565","city":"São Paulo"}`))
		case "/json/99999999":
			w.WriteHeader(http.StatusNotFound)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 2*time.Second)
	ctx := context.Background()

	coords, err := client.Resolve(ctx, "01310-100")
	require.NoError(t, err)
	assert.InDelta(t, -23.5613, coords.Latitude, 0.0001)
	assert.InDelta(t, -46.6565, coords.Longitude, 0.0001)

	_, err = client.Resolve(ctx, "99999-999")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.Resolve(ctx, "123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_ZeroCoordsTreatedAsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cep":"01310100","lat":"0","lng":"0"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 2*time.Second)

	_, err := client.Resolve(context.Background(), "01310-100")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveCity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Campinas", r.URL.Query().Get("city"))
		assert.Equal(t, "SP", r.URL.Query().Get("state"))
		w.Write([]byte(`{"lat":"-22.9099","lng":"-47.0626"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 2*time.Second)

	coords, err := client.ResolveCity(context.Background(), "Campinas", "SP")
	require.NoError(t, err)
	assert.InDelta(t, -22.9099, coords.Latitude, 0.0001)

	_, err = client.ResolveCity(context.Background(), "  ", "SP")
	assert.ErrorIs(t, err, ErrNotFound)
}
