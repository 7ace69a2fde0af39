package main_test

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OpenAPI contract", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile("api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
	})

	It("is a valid OpenAPI 3 document", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("documents every workflow endpoint the router serves", func() {
		for _, path := range []string{
			"/auth/login",
			"/auth/refresh",
			"/auth/me",
			"/proposals",
			"/proposals/{id}",
			"/proposals/{id}/status",
			"/proposals/{id}/implementation",
			"/drafts",
			"/drafts/{id}/status",
			"/realizations",
			"/notifications",
			"/notifications/unread-count",
			"/users",
			"/branches",
		} {
			Expect(doc.Paths.Find(path)).NotTo(BeNil(), "missing path %s", path)
		}
	})

	It("keeps the persisted status vocabulary", func() {
		proposalSchema := doc.Components.Schemas["Proposal"]
		Expect(proposalSchema).NotTo(BeNil())
		status := proposalSchema.Value.Properties["status"]
		Expect(status).NotTo(BeNil())
		Expect(status.Value.Enum).To(ConsistOf("MENUNGGU", "APPROVE_ADMIN", "APPROVE_SUPERADMIN", "DITOLAK"))

		impl := proposalSchema.Value.Properties["implementation_status"]
		Expect(impl).NotTo(BeNil())
		Expect(impl.Value.Enum).To(ConsistOf("BELUM_IMPLEMENTASI", "SUDAH_IMPLEMENTASI"))
	})
})
