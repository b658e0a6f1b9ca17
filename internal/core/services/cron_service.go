package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// CronService runs the scheduled maintenance jobs, currently the hourly
// contract expiry sweep.
type CronService struct {
	cron      *cron.Cron
	contracts *ContractService
}

// NewCronService creates a new cron service
func NewCronService(contracts *ContractService) *CronService {
	return &CronService{
		cron:      cron.New(),
		contracts: contracts,
	}
}

// Start registers and launches the scheduled jobs
func (s *CronService) Start() {
	s.cron.AddFunc("@hourly", s.expireContracts)
	s.cron.Start()
	log.Println("cron service started")
}

// Stop stops the scheduler, waiting for a running job to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("cron service stopped")
}

func (s *CronService) expireContracts() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	swept, err := s.contracts.ExpirePendingContracts(ctx)
	if err != nil {
		log.Printf("contract expiry sweep failed: %v", err)
		return
	}
	if swept > 0 {
		log.Printf("contract expiry sweep: %d contracts expired", swept)
	}
}
