// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"intentrisk-workers/internal/classifier"
	"intentrisk-workers/internal/common/conferencing"
	"intentrisk-workers/internal/common/config"
	"intentrisk-workers/internal/common/database"
	"intentrisk-workers/internal/common/logger"
	"intentrisk-workers/internal/common/media"
	"intentrisk-workers/internal/common/transcription"
	"intentrisk-workers/internal/engine"
	"intentrisk-workers/internal/store"

	// Import all worker packages
	sendnotification "intentrisk-workers/internal/workers/application/send-notification"
	acceptcall "intentrisk-workers/internal/workers/call/accept-call"
	analyzerecording "intentrisk-workers/internal/workers/call/analyze-recording"
	endcall "intentrisk-workers/internal/workers/call/end-call"
	initiatecall "intentrisk-workers/internal/workers/call/initiate-call"
	rejectcall "intentrisk-workers/internal/workers/call/reject-call"
	analyzeinterview "intentrisk-workers/internal/workers/interview/analyze-interview"
	inviteinterview "intentrisk-workers/internal/workers/interview/invite-interview"
)

var (
	zeebeClient zbc.Client
	zapLog      *zap.Logger
)

func TestMain(m *testing.M) {
	var err error

	// Initialize Zeebe client with real connection
	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         "localhost:26500",
		UsePlaintextConnection: true,
	})
	if err != nil {
		panic(fmt.Sprintf("❌ Failed to connect to Zeebe: %v", err))
	}

	// Initialize logger
	zapLog, _ = zap.NewProduction()

	// Run tests
	code := m.Run()

	// Cleanup
	zeebeClient.Close()
	os.Exit(code)
}

func TestFullE2E(t *testing.T) {
	_, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// Load config
	cfg, err := config.Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	t.Log("🚀 Starting FULL E2E Test with real services...")

	// 1. Check all external services are available
	assertAllServicesConnectivity(t, cfg)

	// 2. Create DB tables if needed and insert test data
	createDatabaseTables(t, cfg)

	// 3. Deploy all BPMN files
	deployAllBPMN(t, cfg, zapLog)

	// 4. Test all 8 workers with real execution
	testAllWorkers(t, cfg, zapLog)

	t.Log("✅ ALL TESTS PASSED — Full E2E workflow successful!")
}

func assertAllServicesConnectivity(t *testing.T, cfg *config.Config) {
	t.Log("🔍 Checking service connectivity...")

	// 🔧 FORCE LOCALHOST FOR E2E TESTS
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Database.Elasticsearch.URL = "http://localhost:9200"

	// --- PostgreSQL ---
	db, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "❌ PostgreSQL connection failed")
	assert.NoError(t, db.Ping(context.Background()), "❌ PostgreSQL ping failed")
	db.Close()
	t.Log("✅ PostgreSQL connected")

	// --- Redis ---
	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "❌ Redis client creation failed")
	assert.NoError(t, rdb.Ping(context.Background()), "❌ Redis ping failed")
	rdb.Close()
	t.Log("✅ Redis connected")

	// --- Elasticsearch ---
	esURL := cfg.Database.Elasticsearch.GetURL()
	t.Logf("🔗 Elasticsearch URL: %s", esURL)

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{esURL},
	})
	require.NoError(t, err, "❌ Elasticsearch client creation failed")

	res, err := es.Info()
	require.NoError(t, err, "❌ Elasticsearch info request failed")
	assert.False(t, res.IsError(), "❌ Elasticsearch returned error")
	res.Body.Close()
	t.Log("✅ Elasticsearch connected")

	// --- Zeebe ---
	_, err = zeebeClient.NewTopologyCommand().Send(context.Background())
	assert.NoError(t, err, "❌ Zeebe topology request failed")
	t.Log("✅ Zeebe connected")
}

// ==========================
// 2. Database Tables Setup + Test Data
// ==========================
func createDatabaseTables(t *testing.T, cfg *config.Config) {
	t.Log("🔧 Creating database tables and inserting test data...")

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	db := dbClient.GetDB()

	// Create test tables if they don't exist
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(255) PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			phone VARCHAR(50),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS admin_users (
			id VARCHAR(255) PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			phone VARCHAR(50),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS jobs (
			id VARCHAR(255) PRIMARY KEY,
			admin_user_id VARCHAR(255),
			title VARCHAR(255),
			status VARCHAR(50) DEFAULT 'open',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS applications (
			id VARCHAR(255) PRIMARY KEY,
			job_id VARCHAR(255) NOT NULL,
			client_user_id VARCHAR(255) NOT NULL,
			status VARCHAR(50) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(job_id, client_user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS calls (
			id VARCHAR(255) PRIMARY KEY,
			job_id VARCHAR(255) NOT NULL,
			admin_user_id VARCHAR(255) NOT NULL,
			client_user_id VARCHAR(255) NOT NULL,
			room_name VARCHAR(255) NOT NULL,
			status VARCHAR(50) NOT NULL,
			recording_path TEXT,
			analysis JSONB,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			started_at TIMESTAMP,
			ended_at TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS calls_one_active_per_job
			ON calls (job_id) WHERE status IN ('ringing', 'accepted')`,
		`CREATE TABLE IF NOT EXISTS interviews (
			id VARCHAR(255) PRIMARY KEY,
			job_id VARCHAR(255) NOT NULL,
			client_id VARCHAR(255) NOT NULL,
			admin_id VARCHAR(255) NOT NULL,
			status VARCHAR(50) NOT NULL,
			scheduled_at TIMESTAMP,
			completed_at TIMESTAMP,
			video_duration_seconds DOUBLE PRECISION,
			decision VARCHAR(20),
			analysis JSONB,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE(job_id, client_id)
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id VARCHAR(255) PRIMARY KEY,
			recipient_id VARCHAR(255) NOT NULL,
			recipient_type VARCHAR(20) NOT NULL,
			type VARCHAR(50) NOT NULL,
			channel VARCHAR(20),
			status VARCHAR(20) NOT NULL,
			payload JSONB,
			sent_at VARCHAR(64),
			created_at VARCHAR(64)
		)`,
	}

	for _, q := range queries {
		_, err := db.Exec(q)
		require.NoError(t, err, "❌ Table creation failed")
	}

	// Seed the fixed recipients the worker tests look up
	seeds := []string{
		`INSERT INTO admin_users (id, email, phone)
		 VALUES ('admin-e2e', 'admin-e2e@example.com', '+15550001')
		 ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO users (id, email, phone)
		 VALUES ('client-e2e', 'client-e2e@example.com', '+15550002')
		 ON CONFLICT (id) DO NOTHING`,
	}
	for _, q := range seeds {
		_, err := db.Exec(q)
		require.NoError(t, err, "❌ Seed data insert failed")
	}

	t.Log("✅ Database tables ready")
}

// ==========================
// 3. BPMN Deployment
// ==========================
func deployAllBPMN(t *testing.T, _ *config.Config, _ *zap.Logger) {
	t.Log("🏗️ Deploying BPMN files...")

	possiblePaths := []string{
		"bpmn",
		"../bpmn",
		"../../bpmn",
	}

	var bpmnDir string
	var files []os.DirEntry

	for _, path := range possiblePaths {
		if entries, err := os.ReadDir(path); err == nil {
			files = entries
			bpmnDir = path
			t.Logf("📁 Found BPMN directory: %s", bpmnDir)
			break
		}
	}

	if bpmnDir == "" {
		t.Log("⚠️ BPMN directory not found in any expected location, skipping deployment")
		return
	}

	bpmnCount := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(strings.ToLower(f.Name()), ".bpmn") {
			continue
		}

		path := fmt.Sprintf("%s/%s", bpmnDir, f.Name())
		_, err := zeebeClient.NewDeployResourceCommand().AddResourceFile(path).Send(context.Background())
		if err != nil {
			t.Logf("⚠️ Failed to deploy BPMN %s: %v", f.Name(), err)
		} else {
			t.Logf("✅ Deployed: %s", f.Name())
			bpmnCount++
		}
	}

	t.Logf("✅ Successfully deployed %d BPMN files", bpmnCount)
}

// ==========================
// 4. Test All 8 Workers
// ==========================
func testAllWorkers(t *testing.T, cfg *config.Config, log *zap.Logger) {
	t.Log("🧪 Testing all 8 workers with real execution...")

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	db := dbClient.GetDB()

	esURL := cfg.Database.Elasticsearch.GetURL()
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{esURL}})
	require.NoError(t, err)

	rdbClient, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdbClient.Close()

	rdb := rdbClient.GetClient()

	classifier.Reset()
	defer classifier.Reset()

	testCases := []struct {
		name   string
		testFn func(*testing.T, *config.Config, *zap.Logger, *sql.DB, *elasticsearch.Client, *redis.Client)
	}{
		{"initiate-call", testInitiateCall},
		{"accept-call", testAcceptCall},
		{"reject-call", testRejectCall},
		{"end-call", testEndCall},
		{"analyze-recording", testAnalyzeRecording},
		{"missed-call-sweep", testMissedCallSweep},
		{"invite-interview", testInviteInterview},
		{"analyze-interview", testAnalyzeInterview},
		{"send-notification", testSendNotification},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.testFn(t, cfg, log, db, es, rdb)
		})
	}
}

// ==========================
// Worker Test Helpers
// ==========================

func e2eTokenService(t *testing.T) *conferencing.TokenService {
	t.Helper()
	tokens, err := conferencing.NewTokenService("wss://conference.e2e.test", "e2e-api-key", "e2e-api-secret", time.Hour)
	require.NoError(t, err)
	return tokens
}

func e2eEngine(log logger.Logger) *engine.Engine {
	return engine.New(engine.Config{
		Strategy:        "rules",
		MaxUploadBytes:  10 << 20,
		MaxDurationSecs: 300,
	}, log)
}

// e2eTranscriber has no base URL, so analysis degrades to whatever
// transcript the input carries. Keeps the test independent of the
// transcription service.
func e2eTranscriber(log logger.Logger) *transcription.Client {
	return transcription.NewClient(transcription.Config{}, log)
}

// ringCall drives initiate-call and returns the new call ID.
func ringCall(t *testing.T, log *zap.Logger, db *sql.DB, rdb *redis.Client, jobID string) string {
	t.Helper()
	handler := initiatecall.NewHandler(
		&initiatecall.Config{Timeout: 10 * time.Second},
		store.NewCallStore(db),
		store.NewIncomingCallCache(rdb),
		e2eTokenService(t),
		logger.NewZapAdapter(log),
	)

	output, err := handler.Execute(context.Background(), &initiatecall.Input{
		JobID:        jobID,
		AdminUserID:  "admin-e2e",
		ClientUserID: "client-e2e",
	})
	require.NoError(t, err, "Should create ringing call")
	require.Equal(t, "ringing", output.CallStatus)
	return output.CallID
}

func uniqueJobID() string {
	return fmt.Sprintf("job-e2e-%d", time.Now().UnixNano())
}

// wavBase64 builds a one-second 220 Hz tone so the analyzer has a
// decodable recording.
func wavBase64() string {
	const (
		sampleRate = 16000
		freq       = 220.0
	)
	samples := make([]int16, sampleRate)
	for i := range samples {
		v := 0.5 * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
		samples[i] = int16(v * 32767)
	}

	var buf bytes.Buffer
	dataLen := uint32(len(samples) * 2)
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVEfmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataLen)
	binary.Write(&buf, binary.LittleEndian, samples)

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// ==========================
// Worker Test Functions
// ==========================

func testInitiateCall(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	callID := ringCall(t, log, db, rdb, uniqueJobID())
	assert.NotEmpty(t, callID)

	// The callee-facing ring entry should be cached
	cached, err := store.NewIncomingCallCache(rdb).Get(context.Background(), "client-e2e")
	assert.NoError(t, err)
	if assert.NotNil(t, cached, "Should cache the incoming ring for the client") {
		assert.Equal(t, callID, cached.CallID)
	}
}

func testAcceptCall(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	callID := ringCall(t, log, db, rdb, uniqueJobID())

	handler := acceptcall.NewHandler(
		&acceptcall.Config{Timeout: 10 * time.Second},
		store.NewCallStore(db),
		store.NewIncomingCallCache(rdb),
		e2eTokenService(t),
		logger.NewZapAdapter(log),
	)

	output, err := handler.Execute(context.Background(), &acceptcall.Input{
		CallID: callID,
		UserID: "client-e2e",
	})
	require.NoError(t, err, "Client should accept the ringing call")
	assert.Equal(t, "accepted", output.CallStatus)
	assert.NotEmpty(t, output.ClientToken)

	// Only the addressed party may accept
	_, err = handler.Execute(context.Background(), &acceptcall.Input{
		CallID: callID,
		UserID: "admin-e2e",
	})
	assert.Error(t, err, "Caller should not be able to accept their own call")
}

func testRejectCall(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	callID := ringCall(t, log, db, rdb, uniqueJobID())

	handler := rejectcall.NewHandler(
		&rejectcall.Config{Timeout: 10 * time.Second},
		store.NewCallStore(db),
		store.NewIncomingCallCache(rdb),
		logger.NewZapAdapter(log),
	)

	output, err := handler.Execute(context.Background(), &rejectcall.Input{
		CallID: callID,
		UserID: "client-e2e",
	})
	require.NoError(t, err)
	assert.Equal(t, "rejected", output.CallStatus)

	// Rejecting twice should fail: the call is no longer ringing
	_, err = handler.Execute(context.Background(), &rejectcall.Input{
		CallID: callID,
		UserID: "client-e2e",
	})
	assert.ErrorIs(t, err, store.ErrCallNotRinging)
}

func testEndCall(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	callID := ringCall(t, log, db, rdb, uniqueJobID())

	acceptHandler := acceptcall.NewHandler(
		&acceptcall.Config{Timeout: 10 * time.Second},
		store.NewCallStore(db),
		store.NewIncomingCallCache(rdb),
		e2eTokenService(t),
		logger.NewZapAdapter(log),
	)
	_, err := acceptHandler.Execute(context.Background(), &acceptcall.Input{CallID: callID, UserID: "client-e2e"})
	require.NoError(t, err)

	endHandler := endcall.NewHandler(
		&endcall.Config{Timeout: 10 * time.Second},
		store.NewCallStore(db),
		store.NewIncomingCallCache(rdb),
		logger.NewZapAdapter(log),
	)

	output, err := endHandler.Execute(context.Background(), &endcall.Input{
		CallID: callID,
		UserID: "admin-e2e",
	})
	require.NoError(t, err, "Either participant should be able to end an accepted call")
	assert.Equal(t, "ended", output.CallStatus)
}

func testAnalyzeRecording(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	adapted := logger.NewZapAdapter(log)
	callID := ringCall(t, log, db, rdb, uniqueJobID())

	acceptHandler := acceptcall.NewHandler(
		&acceptcall.Config{Timeout: 10 * time.Second},
		store.NewCallStore(db),
		store.NewIncomingCallCache(rdb),
		e2eTokenService(t),
		adapted,
	)
	_, err := acceptHandler.Execute(context.Background(), &acceptcall.Input{CallID: callID, UserID: "client-e2e"})
	require.NoError(t, err)

	endHandler := endcall.NewHandler(
		&endcall.Config{Timeout: 10 * time.Second},
		store.NewCallStore(db),
		store.NewIncomingCallCache(rdb),
		adapted,
	)
	_, err = endHandler.Execute(context.Background(), &endcall.Input{CallID: callID, UserID: "client-e2e"})
	require.NoError(t, err)

	handler := analyzerecording.NewHandler(
		&analyzerecording.Config{Timeout: 120 * time.Second},
		store.NewCallStore(db),
		store.NewAssessmentIndex(es),
		e2eEngine(adapted),
		e2eTranscriber(adapted),
		adapted,
	)

	output, err := handler.Execute(context.Background(), &analyzerecording.Input{
		CallID:      callID,
		UserID:      "client-e2e",
		AudioBase64: wavBase64(),
		Transcript:  "great work and steady progress at the site, thank you for the update",
	})
	require.NoError(t, err, "Should analyze the ended call")
	assert.Contains(t, []string{"PROCEED", "VERIFY", "REJECT"}, output.Intent)
	assert.Greater(t, output.Confidence, 0.0)
	assert.Equal(t, classifier.RuleVersion, output.ModelVersion)

	// The assessment should be persisted back onto the call row
	call, err := store.NewCallStore(db).GetByID(context.Background(), callID)
	require.NoError(t, err)
	require.NotNil(t, call.Analysis, "Assessment should be attached to the call")
	assert.Equal(t, output.Intent, call.Analysis.Label)
}

func testMissedCallSweep(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	callID := ringCall(t, log, db, rdb, uniqueJobID())

	// Age the ring past the timeout window
	_, err := db.Exec(`UPDATE calls SET created_at = $2 WHERE id = $1`,
		callID, time.Now().UTC().Add(-2*time.Minute))
	require.NoError(t, err)

	swept, err := store.NewCallStore(db).SweepRinging(context.Background(), 30*time.Second)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, swept, int64(1), "Aged ringing call should be swept")

	call, err := store.NewCallStore(db).GetByID(context.Background(), callID)
	require.NoError(t, err)
	assert.Equal(t, "missed", string(call.Status))
}

func testInviteInterview(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	jobID := uniqueJobID()
	seedApplication(t, db, jobID)

	handler := inviteinterview.NewHandler(
		&inviteinterview.Config{Timeout: 10 * time.Second},
		store.NewInterviewStore(db),
		store.NewApplicationStore(db),
		logger.NewZapAdapter(log),
	)

	output, err := handler.Execute(context.Background(), &inviteinterview.Input{
		JobID:       jobID,
		ClientID:    "client-e2e",
		AdminID:     "admin-e2e",
		ScheduledAt: time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err, "Should create a pending interview")
	assert.NotEmpty(t, output.InterviewID)
	assert.Equal(t, "pending", output.InterviewStatus)
	assert.Equal(t, "invited_interview", output.ApplicationStatus)
	assert.Equal(t, "client-e2e", output.RecipientID)
}

func testAnalyzeInterview(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	adapted := logger.NewZapAdapter(log)
	jobID := uniqueJobID()
	seedApplication(t, db, jobID)

	inviteHandler := inviteinterview.NewHandler(
		&inviteinterview.Config{Timeout: 10 * time.Second},
		store.NewInterviewStore(db),
		store.NewApplicationStore(db),
		adapted,
	)
	invited, err := inviteHandler.Execute(context.Background(), &inviteinterview.Input{
		JobID:    jobID,
		ClientID: "client-e2e",
		AdminID:  "admin-e2e",
	})
	require.NoError(t, err)

	handler := analyzeinterview.NewHandler(
		&analyzeinterview.Config{Timeout: 180 * time.Second},
		store.NewInterviewStore(db),
		store.NewApplicationStore(db),
		store.NewAssessmentIndex(es),
		e2eEngine(adapted),
		media.NewDemuxer(cfg.Media.FFmpegPath, os.TempDir(), 2*time.Minute, adapted),
		e2eTranscriber(adapted),
		adapted,
	)

	output, err := handler.Execute(context.Background(), &analyzeinterview.Input{
		InterviewID: invited.InterviewID,
		VideoBase64: wavBase64(),
		Transcript:  "great work and steady progress, happy to confirm the details whenever convenient, thank you",
	})
	require.NoError(t, err, "Should complete and analyze the interview")
	assert.Equal(t, "completed", output.InterviewStatus)
	assert.Contains(t, []string{"APPROVE", "VERIFY", "REJECT"}, output.Decision)
	assert.Equal(t, "decision_notice", output.NotificationType)
}

func testSendNotification(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, es *elasticsearch.Client, rdb *redis.Client) {
	// Channels disabled: exercises recipient lookup and template
	// rendering without touching AWS.
	handler, err := sendnotification.NewHandler(&sendnotification.Config{
		EmailEnabled: false,
		SMSEnabled:   false,
		AWSRegion:    "us-east-1",
		Timeout:      30 * time.Second,
	}, db, logger.NewZapAdapter(log))
	require.NoError(t, err)

	output, err := handler.Execute(context.Background(), &sendnotification.Input{
		RecipientID:      "client-e2e",
		RecipientType:    sendnotification.RecipientTypeClient,
		NotificationType: sendnotification.TypeDecisionNotice,
		JobID:            "job-e2e",
	})
	require.NoError(t, err)
	assert.Equal(t, sendnotification.StatusDisabled, output.Status)
	assert.NotEmpty(t, output.NotificationID)
}

func seedApplication(t *testing.T, db *sql.DB, jobID string) {
	t.Helper()
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO jobs (id, admin_user_id, title, status, created_at, updated_at)
		VALUES ($1, 'admin-e2e', 'E2E test job', 'open', $2, $2)
		ON CONFLICT (id) DO NOTHING`, jobID, now)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO applications (id, job_id, client_user_id, status, created_at, updated_at)
		VALUES ($1, $2, 'client-e2e', 'submitted', $3, $3)
		ON CONFLICT (job_id, client_user_id) DO NOTHING`,
		"app-"+jobID, jobID, now)
	require.NoError(t, err)
}

// ==========================
// Benchmark Tests
// ==========================
func BenchmarkHandler_InitiateCall(b *testing.B) {
	cfg, err := config.Load()
	if err != nil {
		b.Skip("config not available")
	}
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		b.Skip("postgres not available")
	}
	defer dbClient.Close()

	rdbClient, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		b.Skip("redis not available")
	}
	defer rdbClient.Close()

	tokens, err := conferencing.NewTokenService("wss://conference.e2e.test", "e2e-api-key", "e2e-api-secret", time.Hour)
	if err != nil {
		b.Fatal(err)
	}

	log := logger.NewZapAdapter(zap.NewNop())
	handler := initiatecall.NewHandler(
		&initiatecall.Config{Timeout: 10 * time.Second},
		store.NewCallStore(dbClient.GetDB()),
		store.NewIncomingCallCache(rdbClient.GetClient()),
		tokens,
		log,
	)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = handler.Execute(context.Background(), &initiatecall.Input{
			JobID:        fmt.Sprintf("job-bench-%d-%d", time.Now().UnixNano(), i),
			AdminUserID:  "admin-e2e",
			ClientUserID: "client-e2e",
		})
	}
}

func BenchmarkEngine_AssessTranscript(b *testing.B) {
	classifier.Reset()
	defer classifier.Reset()

	log := logger.NewZapAdapter(zap.NewNop())
	eng := engine.New(engine.Config{
		Strategy:        "rules",
		MaxUploadBytes:  10 << 20,
		MaxDurationSecs: 300,
	}, log)

	transcript := strings.TrimSpace(strings.Repeat("great work and steady progress at the site ", 20))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := eng.Assess(context.Background(), engine.AssessInput{Transcript: transcript})
		if err != nil {
			b.Fatal(err)
		}
	}
}
