package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayModelInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /                    - Start page")
	fmt.Println("  GET  /interview           - Interview page")
	fmt.Println("  GET  /results             - Results page")
	fmt.Println("  POST /generate_questions  - Generate six interview questions for a role")
	fmt.Println("  POST /evaluate            - Score one answer")
	fmt.Println("  GET  /health              - Health check")
	fmt.Println("  GET  /test_api            - Round trip to the inference endpoint")
	fmt.Println("  GET  /stats               - Server statistics")
}

func (s *Server) displayModelInfo() {
	gen := s.Services.GenerateAI
	eval := s.Services.EvaluateAI
	fmt.Printf("Question generation: %s (%s)\n", gen.Model(), gen.ProviderName())
	fmt.Printf("Answer evaluation:   %s (%s)\n", eval.Model(), eval.ProviderName())
}

func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f KB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/1024)
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
}

func (s *Server) displayRateLimitInfo() {
	if s.RateLimiter == nil {
		fmt.Println("Rate limiting: DISABLED")
		return
	}
	fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
		s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	if s.RateLimit.ByIP {
		fmt.Println("  - Per IP address rate limiting enabled")
	} else {
		fmt.Println("  - One shared budget for all clients")
	}
}
