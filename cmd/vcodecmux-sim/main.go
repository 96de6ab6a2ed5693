package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/vcodecmux/device"
	"github.com/xaionaro-go/vcodecmux/hw"
	"github.com/xaionaro-go/vcodecmux/hw/hwsim"
	"github.com/xaionaro-go/vcodecmux/types"
	"github.com/xaionaro-go/vcodecmux/workqueue"
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "syntax: %s [flags]\n", os.Args[0])
		pflag.PrintDefaults()
	}

	loggerLevel := logger.LevelInfo
	pflag.Var(&loggerLevel, "log-level", "Log level")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	decoderCount := pflag.Uint("decoders", 3, "the amount of decoder instances to run")
	encoderCount := pflag.Uint("encoders", 2, "the amount of encoder instances to run")
	unitCount := pflag.Uint("units", 30, "the amount of units of work per instance")
	hwLatency := pflag.Duration("hw-latency", hwsim.DefaultLatency, "the simulated duration of one hardware operation")
	pflag.Parse()

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	ctx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *netPprofAddr != "" {
		observability.Go(ctx, func(context.Context) { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	sim := hwsim.New()
	for _, block := range hw.Blocks() {
		sim.SetLatency(ctx, block, *hwLatency)
	}
	dev := device.New(ctx, sim)
	sim.SetNotify(ctx, dev.OnInterrupt)

	var wg sync.WaitGroup
	var totalLocker sync.Mutex
	var total types.Statistics
	runInstance := func(instanceType types.InstanceType) {
		defer wg.Done()
		h, err := dev.Open(ctx, instanceType)
		if err != nil {
			l.Errorf("unable to open a %s instance: %v", instanceType, err)
			return
		}
		defer func() {
			if err := dev.Close(ctx, h); err != nil {
				l.Errorf("unable to close instance #%d: %v", h, err)
			}
		}()

		if err := dev.Configure(ctx, h, types.EncParams{
			Bitrate:        4_000_000,
			GopSize:        30,
			FramerateNum:   30,
			FramerateDenom: 1,
		}); err != nil {
			l.Errorf("unable to configure instance #%d: %v", h, err)
			return
		}

		q := workqueue.NewChanQueue(*unitCount)
		if err := dev.AttachQueue(ctx, h, q); err != nil {
			l.Errorf("unable to attach a queue to instance #%d: %v", h, err)
			return
		}
		for i := uint(0); i < *unitCount; i++ {
			unit := types.Unit{
				Payload:   make([]byte, 4096),
				LastFrame: i == *unitCount-1,
			}
			if err := q.Enqueue(ctx, unit); err != nil {
				l.Errorf("unable to enqueue a unit for instance #%d: %v", h, err)
				return
			}
		}

		startedAt := time.Now()
		for i := uint(0); i < *unitCount; i++ {
			if err := dev.ProcessNext(ctx, h); err != nil {
				l.Errorf("unable to process a unit on instance #%d: %v", h, err)
				return
			}
		}

		stats, err := dev.Statistics(ctx, h)
		if err != nil {
			l.Errorf("unable to get the statistics of instance #%d: %v", h, err)
			return
		}
		l.Infof(
			"instance #%d (%s): %d units, %s produced, wall time %v",
			h, instanceType, stats.UnitsProcessed,
			humanize.Bytes(stats.BytesProduced), time.Since(startedAt),
		)
		totalLocker.Lock()
		total.Add(stats)
		totalLocker.Unlock()
		if loggerLevel >= logger.LevelDebug {
			l.Debug(spew.Sdump(stats))
		}
	}

	for i := uint(0); i < *decoderCount; i++ {
		wg.Add(1)
		observability.Go(ctx, func(context.Context) { runInstance(types.InstanceTypeDecoder) })
	}
	for i := uint(0); i < *encoderCount; i++ {
		wg.Add(1)
		observability.Go(ctx, func(context.Context) { runInstance(types.InstanceTypeEncoder) })
	}
	wg.Wait()

	l.Infof(
		"total: %d units, %s produced, %v of hardware time",
		total.UnitsProcessed, humanize.Bytes(total.BytesProduced), total.ProcessingTime,
	)

	if count := dev.ActiveInstances(ctx); count != 0 {
		l.Errorf("%d instances leaked", count)
		os.Exit(1)
	}
}
