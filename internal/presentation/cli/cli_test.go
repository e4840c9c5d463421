package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/strokeguard/strokeguard/internal/application/dto"
	"github.com/strokeguard/strokeguard/pkg/auth"
	"github.com/strokeguard/strokeguard/pkg/testutil"
)

const bundledTransform = "../../../models/preprocessor.json"

const sampleCSV = `id,gender,age,hypertension,heart_disease,ever_married,work_type,Residence_type,avg_glucose_level,bmi,smoking_status,stroke
9046,Male,67,0,1,Yes,Private,Urban,228.69,36.6,formerly smoked,1
51676,Female,61,0,0,Yes,Self-employed,Rural,202.21,N/A,never smoked,1
31112,Male,80,0,1,Yes,Private,Rural,105.92,32.5,never smoked,1
60182,Female,49,0,0,Yes,Private,Urban,171.23,34.4,smokes,0
1665,Female,79,1,0,Yes,Self-employed,Rural,174.12,24,never smoked,0
56669,Male,81,0,0,Yes,Private,Urban,186.21,29,formerly smoked,0
53882,Male,74,1,1,Yes,Private,Rural,70.09,27.4,never smoked,0
10434,Female,69,0,0,No,Private,Urban,94.39,22.8,never smoked,0
27419,Female,59,0,0,Yes,Private,Rural,76.15,N/A,Unknown,0
60491,Female,78,0,0,Yes,Private,Urban,58.57,24.2,Unknown,0
12109,Female,81,1,0,Yes,Private,Rural,80.43,29.7,never smoked,0
12095,Female,61,0,1,Yes,Govt_job,Rural,120.46,36.8,smokes,0
12175,Female,54,0,0,Yes,Private,Urban,104.51,27.3,smokes,0
8213,Male,78,0,1,Yes,Private,Urban,219.84,N/A,Unknown,0
5317,Female,79,0,1,Yes,Private,Urban,214.09,28.2,never smoked,0
58202,Female,50,1,0,Yes,Self-employed,Rural,167.41,30.9,never smoked,0
56112,Male,64,0,1,Yes,Private,Urban,191.61,37.5,smokes,0
34120,Male,75,1,0,Yes,Private,Urban,221.29,25.8,smokes,0
27458,Female,60,0,0,No,Private,Urban,89.22,37.8,never smoked,0
25226,Male,57,0,1,No,Govt_job,Urban,217.08,N/A,Unknown,0
70630,Female,71,0,0,Yes,Govt_job,Rural,193.94,22.4,smokes,0
13861,Female,52,1,0,Yes,Self-employed,Urban,233.29,48.9,never smoked,0
68794,Female,79,0,0,Yes,Self-employed,Urban,228.7,26.6,never smoked,0
64778,Male,82,0,1,Yes,Private,Rural,208.3,32.5,Unknown,0
4219,Male,71,0,0,Yes,Private,Urban,102.87,27.2,formerly smoked,0
70822,Female,80,0,0,Yes,Self-employed,Rural,104.12,23.5,never smoked,0
38047,Female,65,0,0,Yes,Private,Rural,100.98,28.2,formerly smoked,0
61843,Male,58,0,0,Yes,Private,Rural,189.84,N/A,Unknown,0
54827,Male,69,0,1,Yes,Self-employed,Urban,195.23,28.3,smokes,0
69160,Male,59,0,0,Yes,Private,Rural,211.78,N/A,formerly smoked,0
43717,Male,57,1,0,Yes,Private,Urban,212.08,44.2,smokes,0
28674,Female,74,1,0,Yes,Self-employed,Urban,205.84,54.6,never smoked,0
10460,Female,79,0,0,Yes,Govt_job,Urban,77.08,35,never smoked,0
64908,Male,79,0,1,Yes,Private,Urban,57.08,22,formerly smoked,0
63884,Male,37,0,0,Yes,Private,Rural,162.96,39.4,never smoked,0
37893,Female,37,0,0,Yes,Private,Rural,73.5,26.1,formerly smoked,0
5520,Female,25,0,0,No,Private,Urban,85,22,never smoked,0
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := New(&out, strings.NewReader(stdin))
	err := cmd.Run(context.Background(), append([]string{"strokectl"}, args...))
	return out.String(), err
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stroke.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))
	return path
}

func TestPredict_InlineRecordHeuristic(t *testing.T) {
	record := `{"gender":"Male","age":67,"hypertension":1,"heart_disease":1,"ever_married":"Yes",
		"work_type":"Private","Residence_type":"Urban","avg_glucose_level":228.69,"bmi":36.6,
		"smoking_status":"formerly smoked"}`

	out, err := run(t, "", "predict",
		"--transform", bundledTransform,
		"--model", filepath.Join(t.TempDir(), "absent.json"),
		"--record", record)
	require.NoError(t, err)

	var resp dto.PredictionResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "95.00%", resp.Percentage)
	assert.Equal(t, "HIGH", resp.RiskTier)
	assert.Equal(t, "heuristic", resp.Method)
}

func TestPredict_StdinYAML(t *testing.T) {
	record := `{"gender":"Female","age":25,"hypertension":0,"heart_disease":0,"ever_married":"No",
		"work_type":"Private","residence_type":"Rural","avg_glucose_level":85,"bmi":22,
		"smoking_status":"never smoked"}`

	out, err := run(t, record, "--format", "yaml", "predict",
		"--transform", bundledTransform,
		"--model", filepath.Join(t.TempDir(), "absent.json"),
		"--input", "-")
	require.NoError(t, err)

	var resp dto.PredictionResponse
	require.NoError(t, yaml.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "LOW", resp.RiskTier)
	assert.Equal(t, "10.00%", resp.Percentage)
}

func TestPredict_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no record", []string{"predict", "--transform", bundledTransform}, "record is required"},
		{"both inputs", []string{"predict", "--input", "x.json", "--record", "{}"}, "either"},
		{"not an object", []string{"predict", "--record", "[1]"}, "JSON object"},
		{"missing field", []string{"predict", "--transform", bundledTransform, "--record", `{"age": 40}`}, "missing field"},
		{"bad format", []string{"--format", "xml", "predict"}, "unsupported output format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			testutil.AssertErrorContains(t, err, tt.want)
		})
	}
}

func TestFitThenEvaluate(t *testing.T) {
	data := writeCSV(t)
	transform := filepath.Join(t.TempDir(), "models", "preprocessor.json")

	out, err := run(t, "", "fit", "--data", data, "--out", transform)
	require.NoError(t, err)

	var fit dto.FitReport
	require.NoError(t, json.Unmarshal([]byte(out), &fit))
	assert.Equal(t, 37, fit.Rows)
	assert.Zero(t, fit.Skipped)
	assert.Equal(t, transform, fit.Path)
	assert.FileExists(t, transform)

	out, err = run(t, "", "evaluate",
		"--data", data,
		"--transform", transform,
		"--model", filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	var report dto.EvaluationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "heuristic", report.Method)
	assert.Equal(t, 37, report.Evaluated)
	assert.Equal(t, 3, report.Classes["1"].Support)
	assert.Equal(t, 34, report.Classes["0"].Support)
	assert.GreaterOrEqual(t, report.ROCAUC, 0.0)
	assert.LessOrEqual(t, report.ROCAUC, 1.0)
}

func TestParseDataset_RaggedRow(t *testing.T) {
	_, err := parseDataset(strings.NewReader("a,b\n1,2\n3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestLabelRows(t *testing.T) {
	rows, err := parseDataset(strings.NewReader("age,stroke\n40,1\n50,x\n"))
	require.NoError(t, err)

	labeled := labelRows(rows, "stroke")
	require.Len(t, labeled, 2)
	assert.Equal(t, 1, labeled[0].Label)
	assert.Equal(t, -1, labeled[1].Label)
	assert.NotContains(t, labeled[0].Raw, "stroke")
}

func TestHealthCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"transform_loaded":true,"scorer_state":"model","model_loaded":true}`))
	}))
	defer srv.Close()

	out, err := run(t, "", "health", "--url", srv.URL+"/")
	require.NoError(t, err)

	var report dto.HealthResponse
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.TransformLoaded)
	assert.Equal(t, "model", report.ScorerState)
}

func TestHealthCommand_TLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"transform_loaded":false,"scorer_state":"heuristic"}`))
	}))
	defer srv.Close()

	caFile := filepath.Join(t.TempDir(), "ca.pem")
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	require.NoError(t, os.WriteFile(caFile, certPEM, 0o600))

	_, err := run(t, "", "health", "--url", srv.URL)
	require.Error(t, err, "self-signed certificate must not verify against the system pool")

	out, err := run(t, "", "health", "--url", srv.URL, "--ca", caFile)
	require.NoError(t, err)
	assert.Contains(t, out, "heuristic")
}

func TestHealthCommand_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := run(t, "", "health", "--url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestTokenCommand(t *testing.T) {
	out, err := run(t, "", "token", "--subject", "dr-who", "--secret", "cli-secret", "--role", auth.RoleAdmin)
	require.NoError(t, err)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &body))

	svc, err := auth.NewJWTService(auth.JWTConfig{Secret: "cli-secret", Issuer: "strokeguard"})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(body["token"])
	require.NoError(t, err)
	assert.Equal(t, "dr-who", claims.Subject)
	assert.True(t, claims.HasRole(auth.RoleAdmin))
}

func TestTokenCommand_RequiresKey(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_PRIVATE_KEY_FILE", "")
	_, err := run(t, "", "token", "--subject", "dr-who")
	require.Error(t, err)
}

func TestCertsCommand(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "", "certs", "--out", dir, "--host", "localhost")
	require.NoError(t, err)

	for _, name := range []string{"ca.pem", "server.pem", "server-key.pem"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestMigrateCommand_RequiresURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := run(t, "", "migrate", "up")
	testutil.AssertErrorContains(t, err, "DATABASE_URL")
}

func TestEventsTail_RequiresBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	_, err := run(t, "", "events", "tail")
	testutil.AssertErrorContains(t, err, "KAFKA_BROKERS")
}
