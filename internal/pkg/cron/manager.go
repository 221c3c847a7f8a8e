package cron

import (
	log "log/slog"

	"github.com/robfig/cron/v3"
)

// Entry 一个待注册的定时任务，Spec 为空时不注册
type Entry struct {
	Name string
	Spec string
	Job  cron.Job
}

type Manager struct {
	engine  *cron.Cron
	entries []Entry
}

func NewCronManager(entries ...Entry) *Manager {
	return &Manager{
		engine:  cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		entries: entries,
	}
}

// RegisterJobs 注册定时任务，同一任务上一轮未结束时跳过本轮
func (s *Manager) RegisterJobs() error {
	for _, e := range s.entries {
		if e.Spec == "" {
			log.Warn("Cron job disabled", "job", e.Name)
			continue
		}
		job := cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(e.Job)
		if _, err := s.engine.AddJob(e.Spec, job); err != nil {
			return err
		}
		log.Info("Cron job registered", "job", e.Name, "spec", e.Spec)
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
