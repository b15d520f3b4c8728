// Package server exposes a loaded session over HTTP: JSON endpoints for the
// dashboard data, spreadsheet/CSV downloads, and the reference image
// directory. The server never touches the data files itself; it only sees the
// fully-validated session built at startup.
package server

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hydroponica/ecdash/internal/export"
	"github.com/hydroponica/ecdash/internal/session"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeCSV  = "text/csv; charset=utf-8"
)

// Server serves one session. Sessions are immutable once loaded, so no
// locking is needed.
type Server struct {
	sess *session.Session
	log  *zap.Logger
	eng  *gin.Engine
}

// New wires the routes for sess. The caller owns logger lifecycle.
func New(sess *session.Session, log *zap.Logger) *Server {
	eng := gin.New()
	eng.Use(requestLogger(log), gin.Recovery())
	s := &Server{sess: sess, log: log, eng: eng}
	s.routes()
	return s
}

// Router exposes the underlying engine, mainly for tests.
func (s *Server) Router() *gin.Engine { return s.eng }

// Run blocks serving on addr.
func (s *Server) Run(addr string) error {
	s.log.Info("dashboard listening",
		zap.String("addr", addr),
		zap.String("session", s.sess.ID.String()),
		zap.Int("groups", len(s.sess.Tables.Groups)))
	return s.eng.Run(addr)
}

func (s *Server) routes() {
	s.eng.GET("/", s.handleIndex)
	api := s.eng.Group("/api")
	{
		api.GET("/session", s.handleSession)
		api.GET("/groups", s.handleGroups)
		api.GET("/summary", s.handleSummary)
		api.GET("/best", s.handleBest)
		api.GET("/growth", s.handleGrowth)
		api.GET("/environment/:group", s.handleEnvironment)
		api.GET("/images", s.handleImages)
		api.GET("/export/summary.xlsx", s.handleExportSummary)
		api.GET("/export/growth.xlsx", s.handleExportGrowth)
		api.GET("/export/environment.csv", s.handleExportEnvironment)
	}
	if st, err := os.Stat(s.sess.Config.ImageDir); err == nil && st.IsDir() {
		s.eng.StaticFS("/images", http.Dir(s.sess.Config.ImageDir))
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, indexHTML)
}

func (s *Server) handleSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":        s.sess.ID.String(),
		"loaded_at": s.sess.LoadedAt.Format(time.RFC3339),
		"warnings":  s.sess.Report.Warnings,
	})
}

func (s *Server) handleGroups(c *gin.Context) {
	c.JSON(http.StatusOK, s.sess.Tables.Groups)
}

func (s *Server) handleSummary(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"summaries": s.sess.Summaries,
		"warnings":  s.sess.Report.Warnings,
	})
}

func (s *Server) handleBest(c *gin.Context) {
	best, ok := s.sess.Best()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no growth data loaded"})
		return
	}
	c.JSON(http.StatusOK, best)
}

func (s *Server) handleGrowth(c *gin.Context) {
	c.JSON(http.StatusOK, s.sess.Tables.Growth)
}

func (s *Server) handleEnvironment(c *gin.Context) {
	group := c.Param("group")
	recs, ok := s.sess.EnvFor(group)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no environment data for group %q", group)})
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) handleImages(c *gin.Context) {
	c.JSON(http.StatusOK, s.sess.Images())
}

func (s *Server) handleExportSummary(c *gin.Context) {
	b, err := export.SummaryWorkbook(s.sess.Summaries)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="summary.xlsx"`)
	c.Data(http.StatusOK, mimeXLSX, b)
}

func (s *Server) handleExportGrowth(c *gin.Context) {
	b, err := export.GrowthWorkbook(s.sess.Tables.Growth)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="growth.xlsx"`)
	c.Data(http.StatusOK, mimeXLSX, b)
}

func (s *Server) handleExportEnvironment(c *gin.Context) {
	b, err := export.EnvironmentCSV(s.sess.Tables)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="environment.csv"`)
	c.Data(http.StatusOK, mimeCSV, b)
}

func (s *Server) fail(c *gin.Context, err error) {
	s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}

const indexHTML = `<!DOCTYPE html>
<html lang="ko">
<head><meta charset="utf-8"><title>EC 실험 대시보드</title></head>
<body>
<h1>EC값에 따른 상하부 길이의 성장률 차이</h1>
<ul>
<li><a href="/api/summary">학교별 요약 (JSON)</a></li>
<li><a href="/api/growth">생육 원자료 (JSON)</a></li>
<li><a href="/api/best">최적 조건 (JSON)</a></li>
<li><a href="/api/export/summary.xlsx">요약 다운로드 (xlsx)</a></li>
<li><a href="/api/export/growth.xlsx">생육결과 다운로드 (xlsx)</a></li>
<li><a href="/api/export/environment.csv">환경데이터 다운로드 (csv)</a></li>
</ul>
</body>
</html>
`
