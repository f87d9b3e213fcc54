package app

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/vitalscope/vitalscope/internal/domain"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 1m", func() {
		a.RunSiteSweep()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@every 24h", func() {
		a.SchedClearExpiredData()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// RunSiteSweep ingests every enabled site whose next run time has passed.
// Sites are fanned out over a bounded worker pool; each ingestion is one
// sequential fetch-normalize-persist unit.
func (a *Application) RunSiteSweep() {
	if s := a.GetSettingsStringValue("scheduler", "sweep_enabled"); s == "false" {
		return
	}

	ctx, cancel := defaultContext()
	sites, err := a.siteRepo.GetDue(ctx, time.Now())
	cancel()
	if err != nil {
		zap.L().Error("failed to load due sites", zap.Error(err))
		return
	}
	if len(sites) == 0 {
		return
	}

	maxWorkers := int(a.GetSettingsInt64Value("scheduler", "max_workers"))
	if maxWorkers <= 0 {
		maxWorkers = 8
	}
	pool, err := ants.NewPool(maxWorkers)
	if err != nil {
		zap.L().Error("failed to create sweep pool", zap.Error(err))
		return
	}
	defer pool.Release()

	zap.L().Info("site ingestion sweep started", zap.Int("sites", len(sites)))

	var wg sync.WaitGroup
	for _, site := range sites {
		s := site
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			a.ingestSite(s)
		}); err != nil {
			wg.Done()
			zap.L().Error("failed to submit sweep task",
				zap.String("url", s.Url), zap.Error(err))
		}
	}
	wg.Wait()
}

// ingestSite runs one full ingestion for a monitored site. Success
// bookkeeping happens in the bus subscriber; failures are recorded here.
func (a *Application) ingestSite(site domain.PsSite) {
	timeout := time.Duration(a.appConfig.Pagespeed.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	snap, err := a.psClient.Fetch(ctx, site.Url, site.DeviceType)
	if err != nil {
		zap.L().Warn("site fetch failed",
			zap.String("url", site.Url),
			zap.String("device_type", site.DeviceType),
			zap.Error(err))
		a.markSiteFailed(site.ID)
		return
	}

	if _, err := a.ingestSvc.IngestSnapshot(ctx, snap, site.DeviceType, site.ID); err != nil {
		a.markSiteFailed(site.ID)
	}
}

func (a *Application) markSiteFailed(siteId int64) {
	ctx, cancel := defaultContext()
	defer cancel()
	if err := a.siteRepo.MarkRun(ctx, siteId, time.Now(), "failed", ""); err != nil {
		zap.L().Error("failed to record site failure",
			zap.Int64("site_id", siteId), zap.Error(err))
	}
}

// SchedClearExpiredData purges tests older than the configured retention
// window, children first so no orphan rows survive a partial run.
func (a *Application) SchedClearExpiredData() {
	days := a.GetSettingsInt64Value("retention", "days")
	if days <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -int(days))

	var testIds []int64
	a.gormDB.Model(&domain.PagespeedTest{}).
		Where("test_date < ?", cutoff).
		Pluck("id", &testIds)
	if len(testIds) == 0 {
		return
	}

	var metricIds []int64
	a.gormDB.Model(&domain.PagespeedMetric{}).
		Where("test_id IN ?", testIds).
		Pluck("id", &metricIds)
	if len(metricIds) > 0 {
		a.gormDB.Where("metric_id IN ?", metricIds).Delete(&domain.PagespeedDistribution{})
	}
	a.gormDB.Where("test_id IN ?", testIds).Delete(&domain.PagespeedMetric{})
	a.gormDB.Where("id IN ?", testIds).Delete(&domain.PagespeedTest{})

	zap.L().Info("expired tests purged",
		zap.Int("tests", len(testIds)),
		zap.Time("cutoff", cutoff))
}

// SchedSystemMonitorTask logs host resource usage.
func (a *Application) SchedSystemMonitorTask() {
	percents, err := cpu.Percent(time.Second, false)
	if err != nil || len(percents) == 0 {
		return
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return
	}
	zap.L().Debug("system monitor",
		zap.Float64("cpu_percent", percents[0]),
		zap.Float64("mem_percent", vm.UsedPercent))
}
