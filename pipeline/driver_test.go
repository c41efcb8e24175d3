// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package pipeline_test

import (
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"slices"

	. "github.com/onsi/ginkgo/v2" //nolint:stylecheck
	. "github.com/onsi/gomega"    //nolint:stylecheck

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"idfkit.sh/bindgen"
	"idfkit.sh/bindgen/bindgentest"
	"idfkit.sh/idf"
	"idfkit.sh/kconfig"
	"idfkit.sh/log"
	"idfkit.sh/pipeline"
	"idfkit.sh/publish"
)

type fakeBackend struct {
	out   *idf.BuildOutput
	err   error
	calls int
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Build(context.Context) (*idf.BuildOutput, error) {
	b.calls++
	return b.out, b.err
}

type recordingPublisher struct {
	published []*publish.Result
	err       error
}

func (p *recordingPublisher) Name() string { return "recording" }

func (p *recordingPublisher) Publish(r *publish.Result) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, r)
	return nil
}

func entries(e ...kconfig.Entry) iter.Seq[kconfig.Entry] {
	return slices.Values(e)
}

var _ = Describe("Driver", func() {
	var (
		ctx        context.Context
		hook       *logtest.Hook
		fake       *bindgentest.Fake
		be         *fakeBackend
		publisher  *recordingPublisher
		includeDir string
		outDir     string
	)

	writeHeader := func(sdk string) {
		path := filepath.Join(includeDir, sdk, "bindings.h")
		Expect(os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
		Expect(os.WriteFile(path, []byte("#include <esp_system.h>\n"), 0o644)).To(Succeed())
	}

	output := func(bindings string, kc ...kconfig.Entry) *idf.BuildOutput {
		fake = bindgentest.New(GinkgoT(), bindings)

		factory, err := bindgen.NewFactory(bindgen.WithBin(fake.Bin), bindgen.WithClangArgs("-Isdk"))
		Expect(err).ToNot(HaveOccurred())

		return &idf.BuildOutput{
			CInclArgs:  idf.CInclArgs{Args: []string{"-Isdk"}},
			KConfig:    entries(kc...),
			Components: idf.ComponentsFrom("comp_pthread_enabled", "comp_nvs_flash_enabled"),
			Bindgen:    factory,
			Tracked:    []string{"sdkconfig"},
		}
	}

	run := func() (*publish.Result, error) {
		d, err := pipeline.NewDriver(
			pipeline.WithBackend(be),
			pipeline.WithPublisher(publisher),
			pipeline.WithIncludeDir(includeDir),
			pipeline.WithOutDir(outDir),
		)
		Expect(err).ToNot(HaveOccurred())

		return d.Run(ctx)
	}

	expectStage := func(err error, stage pipeline.Stage) {
		var stageErr *pipeline.StageError
		Expect(errors.As(err, &stageErr)).To(BeTrue())
		Expect(stageErr.Stage).To(Equal(stage))
		Expect(publisher.published).To(BeEmpty())
	}

	BeforeEach(func() {
		logger, h := logtest.NewNullLogger()
		logger.SetLevel(logrus.DebugLevel)
		hook = h
		ctx = log.WithLogger(context.Background(), logger)

		includeDir = GinkgoT().TempDir()
		outDir = filepath.Join(GinkgoT().TempDir(), "out")
		publisher = &recordingPublisher{}
		be = &fakeBackend{}
	})

	When("the SDK targets a RISC-V chip", func() {
		BeforeEach(func() {
			writeHeader("esp-idf")
			be.out = output(bindgentest.Bindings(4, 4, 1),
				kconfig.Entry{Key: "IDF_TARGET", Value: kconfig.String("esp32c3")},
				kconfig.Entry{Key: "PTHREAD_ENABLED", Value: kconfig.Bool(true)},
				kconfig.Entry{Key: "BT_ENABLED", Value: kconfig.Bool(false)},
				kconfig.Entry{Key: "FREERTOS_HZ", Value: kconfig.Int(100)},
			)
		})

		It("publishes the merged flags once", func() {
			result, err := run()
			Expect(err).ToNot(HaveOccurred())
			Expect(be.calls).To(Equal(1))
			Expect(publisher.published).To(HaveLen(1))
			Expect(publisher.published[0]).To(BeIdenticalTo(result))

			Expect(result.Mcu).To(Equal("esp32c3"))
			Expect(result.Version).To(Equal(idf.Version{Major: 4, Minor: 4, Patch: 1}))
			Expect(result.Cfg.Strings()).To(Equal([]string{
				`esp_idf_idf_target="esp32c3"`,
				"esp_idf_pthread_enabled",
				`esp_idf_full_version="4.4.1"`,
				`esp_idf_version="4.4"`,
				`esp_idf_major_version="4"`,
				`esp_idf_minor_version="4"`,
				`esp_idf_patch_version="1"`,
				"esp_idf_comp_pthread_enabled",
				"esp_idf_comp_nvs_flash_enabled",
				"esp32c3",
			}))
			Expect(result.Bindings).To(Equal(filepath.Join(outDir, bindgen.OutputFileName)))
			Expect(result.BindingsSize).To(BeNumerically("==", len(bindgentest.Bindings(4, 4, 1))))
			Expect(result.Tracked).To(Equal([]string{
				"sdkconfig",
				filepath.Join(includeDir, "esp-idf", "bindings.h"),
			}))
			Expect(result.LinkArgs).To(BeNil())
		})

		It("derives every SDK flag under one prefix", func() {
			result, err := run()
			Expect(err).ToNot(HaveOccurred())

			flags := result.Cfg.Strings()
			Expect(flags[len(flags)-1]).To(Equal("esp32c3"))
			for _, f := range flags[:len(flags)-1] {
				Expect(f).To(HavePrefix(idf.Namespace + "_"))
			}
		})

		It("configures the binding generator", func() {
			_, err := run()
			Expect(err).ToNot(HaveOccurred())

			args := fake.Args(GinkgoT())
			Expect(args).To(ContainElements(
				"--use-core",
				"--ctypes-prefix", "c_types",
				"strtold", "_strtold_r", "esp_eth_mac_new_esp32",
				filepath.Join(includeDir, "esp-idf", "bindings.h"),
				"-Isdk",
				"-DESP_IDF_COMP_PTHREAD_ENABLED",
				"-DESP_IDF_COMP_NVS_FLASH_ENABLED",
			))
			Expect(args[len(args)-2:]).To(Equal([]string{"-target", "riscv32"}))
		})

		It("does not warn about the version", func() {
			_, err := run()
			Expect(err).ToNot(HaveOccurred())

			for _, e := range hook.AllEntries() {
				Expect(e.Level).ToNot(Equal(logrus.WarnLevel))
			}
		})
	})

	When("the SDK targets the ESP8266", func() {
		BeforeEach(func() {
			writeHeader("esp-8266-rtos-sdk")
			be.out = output(bindgentest.Bindings(3, 4, 0),
				kconfig.Entry{Key: "IDF_TARGET", Value: kconfig.String("esp8266")},
			)
			be.out.LinkArgs = &idf.LinkArgs{Args: []string{"-nostdlib"}}
		})

		It("uses the RTOS SDK header and the Xtensa target", func() {
			result, err := run()
			Expect(err).ToNot(HaveOccurred())

			args := fake.Args(GinkgoT())
			Expect(args).To(ContainElement(filepath.Join(includeDir, "esp-8266-rtos-sdk", "bindings.h")))
			Expect(args[len(args)-2:]).To(Equal([]string{"-target", "xtensa"}))
			Expect(result.LinkArgs.Args).To(Equal([]string{"-nostdlib"}))
		})

		It("warns about the unsupported version", func() {
			_, err := run()
			Expect(err).ToNot(HaveOccurred())

			var warned bool
			for _, e := range hook.AllEntries() {
				if e.Level == logrus.WarnLevel {
					warned = true
				}
			}
			Expect(warned).To(BeTrue())
		})
	})

	When("the configuration lacks the target", func() {
		BeforeEach(func() {
			writeHeader("esp-idf")
			be.out = output(bindgentest.Bindings(4, 4, 1),
				kconfig.Entry{Key: "SOME_FEATURE", Value: kconfig.Bool(true)},
				kconfig.Entry{Key: "OTHER_FEATURE", Value: kconfig.Bool(true)},
			)
		})

		It("fails naming every collected flag", func() {
			_, err := run()
			expectStage(err, pipeline.StageTarget)
			Expect(err.Error()).To(ContainSubstring("IDF_TARGET"))
			Expect(err.Error()).To(ContainSubstring("esp_idf_some_feature"))
			Expect(err.Error()).To(ContainSubstring("esp_idf_other_feature"))
		})
	})

	When("the backend fails", func() {
		BeforeEach(func() {
			be.err = errors.New("toolchain missing")
		})

		It("aborts in the backend stage", func() {
			_, err := run()
			expectStage(err, pipeline.StageBackend)
			Expect(pkgerrors.Cause(err)).To(MatchError("toolchain missing"))
		})
	})

	When("the backend output breaks the contract", func() {
		BeforeEach(func() {
			be.out = output(bindgentest.Bindings(4, 4, 1))
			be.out.Components = idf.ComponentsFrom()
		})

		It("aborts in the backend stage", func() {
			_, err := run()
			expectStage(err, pipeline.StageBackend)
		})
	})

	When("the bindings header is missing", func() {
		BeforeEach(func() {
			be.out = output(bindgentest.Bindings(4, 4, 1),
				kconfig.Entry{Key: "IDF_TARGET", Value: kconfig.String("esp32")},
			)
		})

		It("aborts in the header stage", func() {
			_, err := run()
			expectStage(err, pipeline.StageHeader)
		})
	})

	When("the bindings lack a version constant", func() {
		BeforeEach(func() {
			writeHeader("esp-idf")
			be.out = output("pub const ESP_IDF_VERSION_MAJOR: u32 = 4;\n",
				kconfig.Entry{Key: "IDF_TARGET", Value: kconfig.String("esp32")},
			)
		})

		It("aborts in the version stage without publishing", func() {
			_, err := run()
			expectStage(err, pipeline.StageVersion)
			Expect(err.Error()).To(ContainSubstring(idf.VersionMinorConst))
		})
	})

	When("publication fails", func() {
		BeforeEach(func() {
			writeHeader("esp-idf")
			be.out = output(bindgentest.Bindings(5, 1, 2),
				kconfig.Entry{Key: "IDF_TARGET", Value: kconfig.String("esp32s3")},
			)
			publisher.err = errors.New("disk full")
		})

		It("reports the publish stage", func() {
			_, err := run()
			expectStage(err, pipeline.StagePublish)
		})
	})
})
