package disclosures

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalyst-labs/radar/internal/core/domain"
	"github.com/catalyst-labs/radar/internal/httpx"
)

// newDisclosureServer serves a senate homepage with a bulk download
// link and house PTR PDFs for the given filing IDs.
func newDisclosureServer(t *testing.T, filingIDs ...int) *httptest.Server {
	t.Helper()

	available := make(map[string]bool, len(filingIDs))
	for _, id := range filingIDs {
		available[fmt.Sprintf("/ptr-pdfs/2026/%d.pdf", id)] = true
	}

	mux := http.NewServeMux()
	var srv *httptest.Server
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			fmt.Fprintf(w, `<html><body><a href="%s/files/disclosures.zip">Download Database</a></body></html>`, srv.URL)
			return
		}
		if r.URL.Path == "/files/disclosures.zip" {
			w.Header().Set("Content-Type", "application/zip")
			_, _ = w.Write([]byte("PK-zip-bytes"))
			return
		}
		if strings.HasPrefix(r.URL.Path, "/ptr-pdfs/") {
			if !available[r.URL.Path] {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.7"))
			return
		}
		http.NotFound(w, r)
	})
	return srv
}

func newTestConnector(t *testing.T, srv *httptest.Server, startID int) *Connector {
	t.Helper()
	c := New(httpx.Config{UserAgent: "test"}, Config{
		SenateURL:  srv.URL,
		HouseYear:  2026,
		StartID:    startID,
		RatePerSec: 1000,
	})
	c.baseURL = srv.URL + "/ptr-pdfs"
	return c
}

func TestFetchBatch_SenateDownloadAndIDScan(t *testing.T) {
	srv := newDisclosureServer(t, 1001)
	c := newTestConnector(t, srv, 1000)

	records, next, err := c.FetchBatch(context.Background(), domain.NewCheckpoint(Name), 3)
	require.NoError(t, err)

	// Bulk database record plus the one PTR that exists in 1001..1003.
	require.Len(t, records, 2)
	assert.Equal(t, "senate_disclosure_db", records[0].SourceName)
	assert.Equal(t, "application/zip", records[0].MIMEType)
	assert.Equal(t, []byte("PK-zip-bytes"), records[0].RawBytes)
	assert.Equal(t, "house_ptr_pdf", records[1].SourceName)
	assert.Equal(t, "1001", records[1].RecordID)
	assert.Equal(t, "application/pdf", records[1].MIMEType)

	// The cursor covers every probed ID, found or not.
	assert.Equal(t, "1003", next.LastCursor)
	assert.Equal(t, 1003, next.Meta[metaLastCheckedID])
	assert.NotEmpty(t, next.Meta["senate_download_url"])
}

func TestFetchBatch_ResumesAfterLastCheckedID(t *testing.T) {
	srv := newDisclosureServer(t, 1001, 1005)
	c := newTestConnector(t, srv, 1000)
	ctx := context.Background()

	_, cp, err := c.FetchBatch(ctx, domain.NewCheckpoint(Name), 3)
	require.NoError(t, err)

	// Second batch scans 1004..1006 and finds 1005.
	records, next, err := c.FetchBatch(ctx, cp, 3)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1005", records[1].RecordID)
	assert.Equal(t, "1006", next.LastCursor)
}

func TestFetchBatch_AdvancesThroughGaps(t *testing.T) {
	srv := newDisclosureServer(t)
	c := newTestConnector(t, srv, 2000)

	records, next, err := c.FetchBatch(context.Background(), domain.NewCheckpoint(Name), 5)
	require.NoError(t, err)

	// Nothing found beyond the bulk download, yet the scan moved on.
	require.Len(t, records, 1)
	assert.Equal(t, "senate_disclosure_db", records[0].SourceName)
	assert.Equal(t, "2005", next.LastCursor)
}

func TestCursorFrom_Precedence(t *testing.T) {
	c := New(httpx.Config{}, Config{StartID: 500})

	cp := domain.NewCheckpoint(Name)
	assert.Equal(t, 500, c.cursorFrom(cp))

	cp.LastCursor = "700"
	assert.Equal(t, 700, c.cursorFrom(cp))

	// The meta sub-cursor wins, including the float form it takes after
	// a JSON round trip.
	cp.Meta[metaLastCheckedID] = float64(900)
	assert.Equal(t, 900, c.cursorFrom(cp))

	cp.Meta[metaLastCheckedID] = 950
	assert.Equal(t, 950, c.cursorFrom(cp))
}

func TestNew_RaisesRateFloor(t *testing.T) {
	c := New(httpx.Config{}, Config{RatePerSec: 0})
	assert.Equal(t, 0.05, c.bucket.Rate())

	c = New(httpx.Config{}, Config{RatePerSec: 2})
	assert.Equal(t, 2.0, c.bucket.Rate())
}
