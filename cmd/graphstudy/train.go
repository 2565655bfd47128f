package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/5gon12eder/graphstudy-go/internal/baselines"
	"github.com/5gon12eder/graphstudy-go/internal/corpus"
	"github.com/5gon12eder/graphstudy-go/internal/features"
	"github.com/5gon12eder/graphstudy-go/internal/nn"
)

// runTrain assembles the labeled corpus from the store (C10/C11),
// trains and persists the discriminator model (C12), and trains and
// persists the Huang composite baseline alongside it (C13), all against
// the same train/test split so their reported hit rates are
// comparable.
func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	common := registerCommon(fs)
	seed := fs.Int64("seed", time.Now().UnixNano(), "random seed for the train/test split and weight initialization")
	testFraction := fs.Float64("test-fraction", 0.2, "fraction of graphs reserved for testing")
	epochs := fs.Int("epochs", 0, "override the discriminator's training epoch budget (0 keeps the default)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := common.logger()
	st, cfg, _, _, err := common.open(log)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))

	propsDisc := features.PropertySetFromSizes(cfg.DesiredPropertiesDisc)
	propsCont := features.PropertySetFromSizes(cfg.DesiredPropertiesCont)
	puncture := features.PropertySetFromPuncture(cfg.Puncture)
	for p := range puncture {
		delete(propsDisc, p)
		delete(propsCont, p)
	}

	ctx := context.Background()
	assembler := corpus.NewAssembler(st, rng, log)
	result, err := assembler.Load(ctx, corpus.LoadOptions{
		PropsDisc: propsDisc, PropsCont: propsCont, Puncture: puncture,
		TestFraction: *testFraction, Persist: true, Strict: true,
	})
	if err != nil {
		return err
	}

	model := nn.New(len(result.Schema.LayoutNames), len(result.Schema.GraphNames), rng)
	opts := nn.DefaultTrainOptions()
	if *epochs > 0 {
		opts.Epochs = *epochs
	}
	nn.Train(model, result.Training, opts, rng, log)
	_, hitRate, errMean, errStdev := nn.Test(model, result.Testing)
	log.Notice("discriminator model trained", "hitRate", hitRate, "errMean", errMean, "errStdev", errStdev)

	if err := nn.SaveArchitecture(st, model); err != nil {
		return err
	}
	if err := nn.SaveWeights(st, model); err != nil {
		return err
	}

	labels := make([]float64, len(result.TrainingInfo))
	copy(labels, result.Training.Out)
	huang, err := baselines.TrainHuang(ctx, st, result.TrainingInfo, labels, rng, log)
	if err != nil {
		return err
	}
	if err := baselines.SaveHuangParams(st, huang); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "discriminator: hitRate=%.4f errMean=%.4g errStdev=%.4g\n", hitRate, errMean, errStdev)
	return nil
}
