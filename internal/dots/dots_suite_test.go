package dots_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDots(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dots Suite")
}
