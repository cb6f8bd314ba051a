package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/kiln-ml/kiln/data"
	"github.com/kiln-ml/kiln/internal/checkpoint"
	"github.com/kiln-ml/kiln/internal/config"
	"github.com/kiln-ml/kiln/internal/plot"
	"github.com/kiln-ml/kiln/metrics"
	"github.com/kiln-ml/kiln/nn"
	"github.com/kiln-ml/kiln/optim"
	"github.com/kiln-ml/kiln/tensor"
	"github.com/kiln-ml/kiln/train"
)

const (
	trainSamples = 2000
	testSamples  = 400
	hiddenSize   = 32
	numClasses   = 2
)

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML run configuration")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return fmt.Errorf("missing -config")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	dev, err := cfg.TensorDevice()
	if err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	rng := rand.New(rand.NewSource(cfg.Seed))
	trainSet, err := gaussianBlobs(rng, trainSamples)
	if err != nil {
		return err
	}
	testSet, err := gaussianBlobs(rng, testSamples)
	if err != nil {
		return err
	}
	log.Info("synthetic dataset ready",
		"train", humanize.Comma(trainSamples), "test", humanize.Comma(testSamples))

	model := nn.NewSequential(
		nn.NewLinear(2, hiddenSize),
		nn.NewReLU(),
		nn.NewMCDropout(0.2),
		nn.NewLinear(hiddenSize, numClasses),
	)
	wrapper := train.New(model, nn.NewCrossEntropyLoss(), train.WithLogger(log))
	wrapper.AddMetric("accuracy", func() metrics.Metric { return metrics.NewAccuracy() })

	var optimizer optim.Optimizer
	switch cfg.Optimizer {
	case "adam":
		optimizer = optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: cfg.LR})
	default:
		optimizer = optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum})
	}

	loopCfg := train.LoopConfig{
		BatchSize: cfg.BatchSize,
		Epochs:    cfg.Epochs,
		Workers:   cfg.Workers,
		Device:    dev,
		Seed:      cfg.Seed,
	}
	history, best, err := wrapper.TrainAndTestOnDatasets(trainSet, testSet, optimizer, loopCfg, true)
	if err != nil {
		return err
	}

	final := history[len(history)-1]
	log.Info("run finished",
		"train_loss", final["train_loss"],
		"test_loss", final["test_loss"],
		"test_accuracy", final["test_accuracy"])

	if cfg.PlotPath != "" {
		series := map[string][]float64{"train_loss": nil, "test_loss": nil}
		for _, epoch := range history {
			series["train_loss"] = append(series["train_loss"], epoch["train_loss"])
			series["test_loss"] = append(series["test_loss"], epoch["test_loss"])
		}
		if err := plot.SaveLossCurve(cfg.PlotPath, "kiln training run", series); err != nil {
			return err
		}
		log.Info("loss curve written", "path", cfg.PlotPath)
	}

	if cfg.CheckpointPath != "" {
		meta := &checkpoint.Meta{Epoch: cfg.Epochs, TestLoss: final["test_loss"]}
		if err := checkpoint.Save(cfg.CheckpointPath, best, meta); err != nil {
			return err
		}
		log.Info("checkpoint written", "path", cfg.CheckpointPath)
	}

	if cfg.Iterations > 1 {
		pred, err := wrapper.PredictOnDataset(testSet, loopCfg, cfg.Iterations, cfg.Half)
		if err != nil {
			return err
		}
		stack := pred.(*tensor.Tensor)
		variance := train.Variance(stack)
		var mean float64
		for _, v := range variance.Data() {
			mean += float64(v)
		}
		mean /= float64(variance.NumElements())
		log.Info("prediction uncertainty",
			"samples", humanize.Comma(int64(testSamples)),
			"iterations", cfg.Iterations,
			"mean_variance", mean)
	}
	return nil
}

// gaussianBlobs samples a two-class dataset of unit-variance clusters
// centered at (+1,+1) and (-1,-1).
func gaussianBlobs(rng *rand.Rand, n int) (*data.TensorDataset, error) {
	inputs := make([]*tensor.Tensor, n)
	targets := make([]*tensor.Tensor, n)
	for i := range inputs {
		class := i % numClasses
		center := float32(1)
		if class == 1 {
			center = -1
		}
		x, err := tensor.FromSlice([]float32{
			center + float32(rng.NormFloat64()),
			center + float32(rng.NormFloat64()),
		}, tensor.Shape{2})
		if err != nil {
			return nil, err
		}
		y, err := tensor.FromSlice([]float32{float32(class)}, tensor.Shape{1})
		if err != nil {
			return nil, err
		}
		inputs[i] = x
		targets[i] = y
	}
	return data.NewTensorDataset(inputs, targets)
}
