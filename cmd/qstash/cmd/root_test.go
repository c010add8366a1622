package cmd

import (
	"os/exec"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func TestCheckJQAvailable(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{
			name: "check jq availability",
			want: func() bool {
				_, err := exec.LookPath("jq")
				return err == nil
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checkJQAvailable()
			if got != tt.want {
				t.Errorf("checkJQAvailable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatWithJQ(t *testing.T) {
	tests := []struct {
		name     string
		jsonData []byte
		wantErr  bool
		skipTest bool
	}{
		{
			name:     "valid json",
			jsonData: []byte(`{"key":"value","number":42}`),
			wantErr:  false,
			skipTest: !checkJQAvailable(),
		},
		{
			name:     "invalid json",
			jsonData: []byte(`{"key":"value",}`),
			wantErr:  true,
			skipTest: !checkJQAvailable(),
		},
		{
			name:     "empty json object",
			jsonData: []byte(`{}`),
			wantErr:  false,
			skipTest: !checkJQAvailable(),
		},
		{
			name:     "json array",
			jsonData: []byte(`[1,2,3]`),
			wantErr:  false,
			skipTest: !checkJQAvailable(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.skipTest {
				t.Skip("jq not available, skipping test")
			}

			got, err := formatWithJQ(tt.jsonData)
			if (err != nil) != tt.wantErr {
				t.Errorf("formatWithJQ() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got == "" {
				t.Errorf("formatWithJQ() returned empty string for valid JSON")
			}
		})
	}
}

func TestSplitPair(t *testing.T) {
	tests := []struct {
		name      string
		s         string
		sep       string
		wantKey   string
		wantValue string
		wantErr   bool
	}{
		{
			name:      "simple header pair",
			s:         "X-Trace-Id:abc123",
			sep:       ":",
			wantKey:   "X-Trace-Id",
			wantValue: "abc123",
		},
		{
			name:      "value contains separator",
			s:         "Authorization:Bearer a:b:c",
			sep:       ":",
			wantKey:   "Authorization",
			wantValue: "Bearer a:b:c",
		},
		{
			name:      "equals separator",
			s:         "primary=https://example.com/hook",
			sep:       "=",
			wantKey:   "primary",
			wantValue: "https://example.com/hook",
		},
		{
			name:      "empty value is allowed",
			s:         "key:",
			sep:       ":",
			wantKey:   "key",
			wantValue: "",
		},
		{
			name:    "missing separator",
			s:       "no-separator-here",
			sep:     ":",
			wantErr: true,
		},
		{
			name:    "empty key",
			s:       ":value",
			sep:     ":",
			wantErr: true,
		},
		{
			name:    "empty string",
			s:       "",
			sep:     ":",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, value, err := splitPair(tt.s, tt.sep)
			if (err != nil) != tt.wantErr {
				t.Errorf("splitPair() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if key != tt.wantKey || value != tt.wantValue {
				t.Errorf("splitPair() = (%q, %q), want (%q, %q)", key, value, tt.wantKey, tt.wantValue)
			}
		})
	}
}

func TestFormatUnixMilli(t *testing.T) {
	if got := formatUnixMilli(0); got != "" {
		t.Errorf("formatUnixMilli(0) = %q, want empty string", got)
	}

	// Whole-second timestamp so the display format round-trips exactly.
	const ms = int64(1700000000000)
	got := formatUnixMilli(ms)
	parsed, err := time.ParseInLocation("2006-01-02 15:04:05", got, time.Local)
	if err != nil {
		t.Fatalf("formatUnixMilli(%d) = %q, not parseable: %v", ms, got, err)
	}
	if parsed.UnixMilli() != ms {
		t.Errorf("formatUnixMilli(%d) round-trips to %d", ms, parsed.UnixMilli())
	}
}

func TestEndpointFlags(t *testing.T) {
	tests := []struct {
		name      string
		values    []string
		wantErr   bool
		wantNames []string
		wantURLs  []string
	}{
		{
			name:    "no endpoints",
			values:  nil,
			wantErr: true,
		},
		{
			name:      "bare url",
			values:    []string{"https://example.com/hook"},
			wantNames: []string{""},
			wantURLs:  []string{"https://example.com/hook"},
		},
		{
			name:      "bare url with query params",
			values:    []string{"https://example.com/hook?tenant=acme"},
			wantNames: []string{""},
			wantURLs:  []string{"https://example.com/hook?tenant=acme"},
		},
		{
			name:      "named endpoint",
			values:    []string{"primary=https://example.com/hook"},
			wantNames: []string{"primary"},
			wantURLs:  []string{"https://example.com/hook"},
		},
		{
			name:      "mixed",
			values:    []string{"primary=https://a.example.com", "http://b.example.com"},
			wantNames: []string{"primary", ""},
			wantURLs:  []string{"https://a.example.com", "http://b.example.com"},
		},
		{
			name:    "neither url nor pair",
			values:  []string{"not-an-endpoint"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			cmd.Flags().StringArray("endpoint", nil, "")
			for _, v := range tt.values {
				if err := cmd.Flags().Set("endpoint", v); err != nil {
					t.Fatalf("setting endpoint flag: %v", err)
				}
			}

			eps, err := endpointFlags(cmd)
			if (err != nil) != tt.wantErr {
				t.Errorf("endpointFlags() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if len(eps) != len(tt.wantURLs) {
				t.Fatalf("endpointFlags() returned %d endpoints, want %d", len(eps), len(tt.wantURLs))
			}
			for i := range eps {
				if eps[i].Name != tt.wantNames[i] || eps[i].URL != tt.wantURLs[i] {
					t.Errorf("endpoint %d = {%q %q}, want {%q %q}",
						i, eps[i].Name, eps[i].URL, tt.wantNames[i], tt.wantURLs[i])
				}
			}
		})
	}
}

func TestBuildPublishOptions(t *testing.T) {
	tests := []struct {
		name     string
		flags    map[string]string
		wantOpts int
		wantErr  bool
	}{
		{
			name:     "no flags set",
			flags:    nil,
			wantOpts: 0,
		},
		{
			name: "delay method and header",
			flags: map[string]string{
				"delay":          "30s",
				"method":         "PUT",
				"forward-header": "X-Trace-Id:abc",
			},
			wantOpts: 3,
		},
		{
			name: "zero retries is explicit",
			flags: map[string]string{
				"retries": "0",
			},
			wantOpts: 1,
		},
		{
			name: "all scalar options",
			flags: map[string]string{
				"delay":                       "5s",
				"not-before":                  "2026-01-02T15:04:05Z",
				"retries":                     "3",
				"callback":                    "https://example.com/cb",
				"failure-callback":            "https://example.com/fail",
				"method":                      "PUT",
				"content-type":                "application/json",
				"deduplication-id":            "dedup-1",
				"content-based-deduplication": "true",
				"delivery-timeout":            "15s",
			},
			wantOpts: 10,
		},
		{
			name: "invalid not-before",
			flags: map[string]string{
				"not-before": "tomorrow",
			},
			wantErr: true,
		},
		{
			name: "invalid forward-header",
			flags: map[string]string{
				"forward-header": "no-colon-here",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			addPublishFlags(cmd)
			for k, v := range tt.flags {
				if err := cmd.Flags().Set(k, v); err != nil {
					t.Fatalf("setting flag %s: %v", k, err)
				}
			}

			opts, err := buildPublishOptions(cmd)
			if (err != nil) != tt.wantErr {
				t.Errorf("buildPublishOptions() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && len(opts) != tt.wantOpts {
				t.Errorf("buildPublishOptions() returned %d options, want %d", len(opts), tt.wantOpts)
			}
		})
	}
}

func TestDateRangeFlags(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		to       string
		wantFrom int64
		wantTo   int64
		wantErr  bool
	}{
		{
			name: "both empty",
		},
		{
			name:     "valid range",
			from:     "2026-01-01T00:00:00Z",
			to:       "2026-01-02T00:00:00Z",
			wantFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli(),
			wantTo:   time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC).UnixMilli(),
		},
		{
			name:     "from only",
			from:     "2026-01-01T00:00:00Z",
			wantFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli(),
		},
		{
			name:    "invalid from",
			from:    "yesterday",
			wantErr: true,
		},
		{
			name:    "invalid to",
			to:      "12/25/2023",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			addListFilterFlags(cmd)
			if tt.from != "" {
				cmd.Flags().Set("from", tt.from)
			}
			if tt.to != "" {
				cmd.Flags().Set("to", tt.to)
			}

			from, to, err := dateRangeFlags(cmd)
			if (err != nil) != tt.wantErr {
				t.Errorf("dateRangeFlags() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && (from != tt.wantFrom || to != tt.wantTo) {
				t.Errorf("dateRangeFlags() = (%d, %d), want (%d, %d)", from, to, tt.wantFrom, tt.wantTo)
			}
		})
	}
}

func TestPrintOutput(t *testing.T) {
	tests := []struct {
		name        string
		v           interface{}
		outputJSON  bool
		prettyJSON  bool
		expectPanic bool
	}{
		{
			name:       "simple string - human readable",
			v:          "hello world",
			outputJSON: false,
			prettyJSON: false,
		},
		{
			name:       "simple map - json format",
			v:          map[string]interface{}{"key": "value", "number": 42},
			outputJSON: true,
			prettyJSON: false,
		},
		{
			name:       "simple map - pretty json format",
			v:          map[string]interface{}{"key": "value", "number": 42},
			outputJSON: true,
			prettyJSON: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Capture original values
			origOutputJSON := outputJSON
			origPrettyJSON := prettyJSON

			// Set test values
			outputJSON = tt.outputJSON
			prettyJSON = tt.prettyJSON

			// Restore original values after test
			defer func() {
				outputJSON = origOutputJSON
				prettyJSON = origPrettyJSON
			}()

			// This test mainly ensures printOutput doesn't panic
			// Full output testing would require more complex stdout capture
			defer func() {
				if r := recover(); r != nil && !tt.expectPanic {
					t.Errorf("printOutput() panicked unexpectedly: %v", r)
				}
			}()

			printOutput(tt.v)

			// Basic validation that function completed without panic
			if tt.expectPanic {
				t.Errorf("printOutput() expected to panic but didn't")
			}
		})
	}
}
