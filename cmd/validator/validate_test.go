package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestValidateCommand(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validate Command Suite")
}

var _ = Describe("validate command", func() {
	var (
		gwSrv *httptest.Server
		out   bytes.Buffer
	)

	BeforeEach(func() {
		out.Reset()
		gwSrv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"choices": [{"message": {"content": "ok"}}]}`)
		}))
	})

	AfterEach(func() {
		gwSrv.Close()
	})

	writeParams := func() string {
		path := filepath.Join(GinkgoT().TempDir(), "conn.params.json")
		content := fmt.Sprintf(`{
			"parameters": {
				"connectionName": {"value": "conn-cli"},
				"targetUrl": {"value": %q},
				"staticModels": {"value": [
					{"name": "gpt-4o", "properties": {"model": {"name": "gpt-4o", "format": "OpenAI"}}}
				]}
			}
		}`, gwSrv.URL)
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		return path
	}

	runCLI := func(args ...string) error {
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs(args)
		return rootCmd.Execute()
	}

	// Given a healthy gateway and a declared deployment
	// When the validate command runs
	// Then it should exit cleanly with the stage output printed
	It("should succeed for a passing run", func() {
		err := runCLI("validate",
			"--params", writeParams(),
			"--variant", "model-gateway",
			"--deployment-name", "gpt-4o",
			"--api-key", "key-1",
		)

		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(ContainSubstring("ALL VALIDATION STAGES PASSED"))
	})

	// Given a deployment the connection does not declare
	// When the validate command runs
	// Then the failure surfaces as an error, after the deferred scheduler
	// and store cleanup, rather than killing the process from inside RunE
	It("should report failed runs as errValidationFailed", func() {
		err := runCLI("validate",
			"--params", writeParams(),
			"--variant", "model-gateway",
			"--deployment-name", "missing-model",
			"--api-key", "key-1",
		)

		Expect(errors.Is(err, errValidationFailed)).To(BeTrue())
		Expect(out.String()).To(ContainSubstring("not found"))
	})
})
