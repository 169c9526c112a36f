package harness

import (
	"sync"
	"time"

	"github.com/corepath/shardbench/internal/control"
	"github.com/corepath/shardbench/internal/generator"
	"github.com/corepath/shardbench/internal/histogram"
	"github.com/corepath/shardbench/internal/mesh"
	"github.com/corepath/shardbench/internal/msg"
	"github.com/corepath/shardbench/internal/pcore"
	"github.com/corepath/shardbench/internal/shard"
	"github.com/corepath/shardbench/internal/tsc"
)

// verifyLayoutSW requires the worker, generator and controller cores to be
// mutually distinct: SW gives the controller its own dedicated core.
func verifyLayoutSW(cfg RunConfig) error {
	all := append([]int{}, cfg.WorkerCores...)
	all = append(all, cfg.GeneratorCore, cfg.ControllerCore)
	return pcore.VerifyLayout(all)
}

// verifyLayoutDSW requires worker cores to be mutually distinct and
// disjoint from the generator/controller core; DSW intentionally shares
// one core between the generator and the controller, so that pair alone
// is allowed to coincide.
func verifyLayoutDSW(cfg RunConfig) error {
	if err := pcore.VerifyLayout(cfg.WorkerCores); err != nil {
		return err
	}
	for _, c := range cfg.WorkerCores {
		if c == cfg.GeneratorCore || c == cfg.ControllerCore {
			return pcore.VerifyLayout([]int{c, c}) // produces the duplicate-core error
		}
	}
	return pcore.VerifyLayout([]int{cfg.GeneratorCore})
}

// calibrateOnGeneratorCore runs TSC calibration pinned to the generator
// core, matching the reference's rationale that interrupts are least
// likely to land there, keeping the measurement clean.
func calibrateOnGeneratorCore(core int, targets []uint64, fast bool) ([]uint64, uint64) {
	exec := pcore.NewExecutor(core)
	type result struct {
		loops []uint64
		hz    uint64
	}
	resCh := make(chan result, 1)
	exec.Spawn(func() {
		cal := tsc.New(fast)
		loops := cal.Calibrate(targets)
		hz := tsc.GetTSCHz()
		resCh <- result{loops: loops, hz: hz}
	})
	res := <-resCh
	exec.Close()
	return res.loops, res.hz
}

func columnsForMode(mode MeasurementMode, nStages int) int {
	if mode == ModeSwitching {
		return nStages
	}
	return 1
}

func sum(vs []uint64) uint64 {
	var s uint64
	for _, v := range vs {
		s += v
	}
	return s
}

// RunSW executes a complete SW-policy run: the controller owns its own
// pinned core and pulls generated traffic off an SPSC channel; every hop
// between stages is routed back through the controller.
func RunSW(cfg RunConfig) (*Report, error) {
	processStart := time.Now()
	if err := verifyLayoutSW(cfg); err != nil {
		return nil, err
	}

	nWorkers := len(cfg.WorkerCores)
	loops, tscHz := calibrateOnGeneratorCore(cfg.GeneratorCore, cfg.StageCycles, cfg.Fast)

	hists := histogram.NewSet(nWorkers, columnsForMode(cfg.Mode, len(loops)), HistogramMaxLatency)
	pipeline := buildPipeline(loops, hists, cfg.Mode)

	nrShards := nWorkers + 1
	dataMesh := mesh.New[*msg.Msg](nrShards, MeshChannelSize/nWorkers)
	controlMesh := mesh.New[control.Message](nrShards, 1)

	stopTime := time.Now().Add(cfg.Duration)
	controller := shard.NewController(dataMesh.Shard(0), controlMesh.Shard(0), nWorkers, shard.SW, stopTime)

	pool := pcore.NewPool(cfg.WorkerCores)
	var workerWG sync.WaitGroup
	for i := 0; i < pool.Len(); i++ {
		id := i + 1
		w := shard.NewWorker(id, dataMesh.Shard(id), controlMesh.Shard(id), shard.SW, stopTime, pool.Executor(i))
		workerWG.Add(1)
		go func() {
			defer workerWG.Done()
			w.Serve()
		}()
	}

	controller.AwaitWorkerInit()
	returnsExec := pcore.NewExecutor(cfg.ControllerCore)
	returnsExec.Spawn(controller.ServeReturns)

	spsc := mesh.NewSPSC(GeneratorChannelCapacity)
	dispatchDone := make(chan struct{})
	dispatchExec := pcore.NewExecutor(cfg.ControllerCore)
	dispatchExec.Spawn(func() {
		defer close(dispatchDone)
		for {
			m, ok := spsc.Recv()
			if !ok {
				return
			}
			controller.Dispatch(m)
		}
	})

	genExec := pcore.NewExecutor(cfg.GeneratorCore)
	genDone := make(chan generator.Stats, 1)
	genExec.Spawn(func() {
		genDone <- generator.RunToChannel(spsc, pipeline, stopTime)
	})
	<-genDone
	<-dispatchDone
	genExec.Close()
	dispatchExec.Close()
	controller.MarkEnd()

	controller.Drain()
	controller.Shutdown()
	returnsExec.Close()
	workerWG.Wait()
	pool.JoinAll()

	endingTime := time.Since(processStart)
	return &Report{
		WorkerCores:      cfg.WorkerCores,
		Policy:           shard.SW,
		Mode:             cfg.Mode,
		RunDuration:      controller.RunDuration(),
		EndingTime:       endingTime,
		Diff:             endingTime - controller.RunDuration(),
		NumCores:         nWorkers + 2,
		TSCHz:            tscHz,
		ProcessedPackets: controller.ProcessedPackets(),
		StageCycles:      cfg.StageCycles,
		Histograms:       hists,
	}, nil
}

// RunDSW executes a complete DSW-policy run: the generator shares the
// controller's core and dispatches directly; workers hop straight to the
// next worker, only returning to the controller when a message is
// terminal or the deadline has passed.
func RunDSW(cfg RunConfig) (*Report, error) {
	processStart := time.Now()
	if err := verifyLayoutDSW(cfg); err != nil {
		return nil, err
	}

	nWorkers := len(cfg.WorkerCores)
	loops, tscHz := calibrateOnGeneratorCore(cfg.GeneratorCore, cfg.StageCycles, cfg.Fast)

	hists := histogram.NewSet(nWorkers, columnsForMode(cfg.Mode, len(loops)), HistogramMaxLatency)
	pipeline := buildPipeline(loops, hists, cfg.Mode)

	nrShards := nWorkers + 1
	dataMesh := mesh.New[*msg.Msg](nrShards, MeshChannelSize/nWorkers)
	controlMesh := mesh.New[control.Message](nrShards, 1)

	stopTime := time.Now().Add(cfg.Duration)
	controller := shard.NewController(dataMesh.Shard(0), controlMesh.Shard(0), nWorkers, shard.DSW, stopTime)

	pool := pcore.NewPool(cfg.WorkerCores)
	var workerWG sync.WaitGroup
	for i := 0; i < pool.Len(); i++ {
		id := i + 1
		w := shard.NewWorker(id, dataMesh.Shard(id), controlMesh.Shard(id), shard.DSW, stopTime, pool.Executor(i))
		workerWG.Add(1)
		go func() {
			defer workerWG.Done()
			w.Serve()
		}()
	}

	controller.AwaitWorkerInit()
	go controller.ServeReturns()

	genExec := pcore.NewExecutor(cfg.GeneratorCore)
	genDone := make(chan generator.Stats, 1)
	genExec.Spawn(func() {
		genDone <- generator.RunInline(controller, pipeline, stopTime)
	})
	<-genDone
	genExec.Close()
	controller.MarkEnd()

	controller.Drain()
	controller.Shutdown()
	workerWG.Wait()
	pool.JoinAll()

	endingTime := time.Since(processStart)
	return &Report{
		WorkerCores:      cfg.WorkerCores,
		Policy:           shard.DSW,
		Mode:             cfg.Mode,
		RunDuration:      controller.RunDuration(),
		EndingTime:       endingTime,
		Diff:             endingTime - controller.RunDuration(),
		NumCores:         nWorkers + 1,
		TSCHz:            tscHz,
		ProcessedPackets: controller.ProcessedPackets(),
		StageCycles:      cfg.StageCycles,
		Histograms:       hists,
	}, nil
}
