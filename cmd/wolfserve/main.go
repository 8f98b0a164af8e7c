// Command wolfserve is a thin HTTP collaborator spec.md §1 describes as
// external to the core: it exposes pkg/puzzleapi over HTTP and never
// reimplements puzzle-engine logic itself.
package main

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/asv/wolfpuzzle/pkg/generator"
	"github.com/asv/wolfpuzzle/pkg/library"
	"github.com/asv/wolfpuzzle/pkg/puzzleapi"
)

var logger = hclog.New(&hclog.LoggerOptions{
	Name:  "wolfserve",
	Level: hclog.Info,
})

func main() {
	addr := os.Getenv("WOLFSERVE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	r := setupRouter()
	logger.Info("listening", "addr", addr)
	if err := r.Run(addr); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func setupRouter() *gin.Engine {
	r := gin.Default()

	api := r.Group("/api/v1")
	{
		api.GET("/health", handleHealth)
		api.POST("/generate", handleGenerate)
		api.POST("/verify", handleVerify)
	}
	return r
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type generateRequest struct {
	N             int   `json:"n" binding:"required"`
	StatementsMin int   `json:"statements_min"`
	StatementsMax int   `json:"statements_max"`
	HasShill      bool  `json:"has_shill"`
	Seed          int64 `json:"seed"`
}

func handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lib, err := puzzleapi.BuildLibrary(req.N, library.DefaultConfig())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tc, err := puzzleapi.BuildCache(lib, req.N)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	genCfg := generator.Config{
		MinStatements: req.StatementsMin,
		MaxStatements: req.StatementsMax,
		HasShill:      req.HasShill,
	}
	p, err := puzzleapi.GenerateWithLibrary(req.N, genCfg, lib, tc, req.Seed)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":      puzzleapi.EncodePuzzle(p),
		"solution":  p.Solution.W,
		"has_shill": p.Solution.HasShill,
		"shill":     p.Solution.Shill,
	})
}

type verifyRequest struct {
	Code string `json:"code" binding:"required"`
	N    int    `json:"n" binding:"required"`
}

func handleVerify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := puzzleapi.DecodePuzzle(req.Code, req.N)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lib, err := puzzleapi.BuildLibrary(req.N, library.DefaultConfig())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	tc, err := puzzleapi.BuildCache(lib, req.N)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	w, shill, err := puzzleapi.Verify(p, tc)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"w":     w,
		"shill": shill,
	})
}
