package permission_test

import (
	"github.com/frahmantamala/erp-rbac/internal/core/permission"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tree editing", func() {
	Describe("UpdatePageAction", func() {
		It("should create the section and page on demand", func() {
			tree := permission.UpdatePageAction(nil, "purchasing", "suppliers", permission.ActionView, true)

			Expect(tree).To(Equal([]permission.SectionPermission{
				{SectionID: "purchasing", Pages: []permission.PagePermission{
					{PageID: "suppliers", Actions: permission.ModuleActions{View: true}},
				}},
			}))
		})

		It("should append new pages after existing ones", func() {
			tree := permission.UpdatePageAction(nil, "purchasing", "suppliers", permission.ActionView, true)
			tree = permission.UpdatePageAction(tree, "purchasing", "purchase-orders", permission.ActionPrint, true)

			Expect(tree).To(HaveLen(1))
			Expect(tree[0].Pages).To(HaveLen(2))
			Expect(tree[0].Pages[0].PageID).To(Equal("suppliers"))
			Expect(tree[0].Pages[1].PageID).To(Equal("purchase-orders"))
		})

		It("should prune the page and then the section once every action is cleared", func() {
			var tree []permission.SectionPermission
			for _, a := range permission.Actions {
				tree = permission.UpdatePageAction(tree, "purchasing", "suppliers", a, true)
			}
			Expect(permission.PageStatus(tree, "purchasing", "suppliers")).To(Equal(permission.StatusAll))

			for _, a := range permission.Actions {
				tree = permission.UpdatePageAction(tree, "purchasing", "suppliers", a, false)
			}

			_, found := permission.FindSection(tree, "purchasing")
			Expect(found).To(BeFalse())
			Expect(tree).To(BeEmpty())
		})

		It("should keep sibling pages when one page is pruned", func() {
			tree := permission.UpdatePageAction(nil, "purchasing", "suppliers", permission.ActionView, true)
			tree = permission.UpdatePageAction(tree, "purchasing", "raw-materials", permission.ActionView, true)
			tree = permission.UpdatePageAction(tree, "purchasing", "suppliers", permission.ActionView, false)

			Expect(tree).To(Equal([]permission.SectionPermission{
				{SectionID: "purchasing", Pages: []permission.PagePermission{
					{PageID: "raw-materials", Actions: permission.ModuleActions{View: true}},
				}},
			}))
		})

		It("should not create anything when revoking on a missing page", func() {
			tree := permission.UpdatePageAction(nil, "purchasing", "suppliers", permission.ActionView, false)
			Expect(tree).To(BeEmpty())
		})

		It("should leave the input tree untouched", func() {
			original := []permission.SectionPermission{
				{SectionID: "purchasing", Pages: []permission.PagePermission{
					{PageID: "suppliers", Actions: permission.ModuleActions{View: true}},
				}},
			}
			snapshot := permission.CloneSections(original)

			_ = permission.UpdatePageAction(original, "purchasing", "suppliers", permission.ActionView, false)
			_ = permission.UpdatePageAction(original, "purchasing", "suppliers", permission.ActionEdit, true)

			Expect(original).To(Equal(snapshot))
		})

		It("should ignore unknown actions", func() {
			original := permission.UpdatePageAction(nil, "sales", "customers", permission.ActionView, true)
			tree := permission.UpdatePageAction(original, "sales", "customers", permission.ActionType("export"), true)
			Expect(tree).To(Equal(original))
		})
	})

	Describe("SetSectionActions", func() {
		It("should apply the actions to every catalog page of the section", func() {
			catalog := fixtureCatalog()
			tree := catalog.SetSectionActions(nil, "purchasing", permission.FullActions())

			Expect(catalog.SectionStatus(tree, "purchasing")).To(Equal(permission.StatusAll))
			Expect(tree[0].Pages).To(HaveLen(4))
		})

		It("should clear the section when given empty actions", func() {
			catalog := fixtureCatalog()
			tree := catalog.SetSectionActions(nil, "purchasing", permission.FullActions())
			tree = catalog.SetSectionActions(tree, "purchasing", permission.DefaultActions())

			Expect(tree).To(BeEmpty())
		})

		It("should leave other sections alone", func() {
			catalog := fixtureCatalog()
			tree := permission.UpdatePageAction(nil, "reports", "purchase-reports", permission.ActionView, true)
			tree = catalog.SetSectionActions(tree, "purchasing", permission.ModuleActions{View: true})

			Expect(tree).To(HaveLen(2))
			Expect(permission.PageStatus(tree, "reports", "purchase-reports")).To(Equal(permission.StatusPartial))
		})

		It("should ignore unknown sections", func() {
			catalog := fixtureCatalog()
			Expect(catalog.SetSectionActions(nil, "warehouse", permission.FullActions())).To(BeEmpty())
		})
	})

	Describe("repeated entries", func() {
		viewOnly := permission.ModuleActions{View: true}

		It("should revoke a page listed in two copies of its section", func() {
			tree := []permission.SectionPermission{
				{SectionID: "purchasing", Pages: []permission.PagePermission{{PageID: "suppliers", Actions: viewOnly}}},
				{SectionID: "purchasing", Pages: []permission.PagePermission{{PageID: "suppliers", Actions: viewOnly}}},
			}

			tree = permission.UpdatePageAction(tree, "purchasing", "suppliers", permission.ActionView, false)

			Expect(tree).To(BeEmpty())
			Expect(permission.PageStatus(tree, "purchasing", "suppliers")).To(Equal(permission.StatusNone))
		})

		It("should revoke a page listed twice in one section", func() {
			tree := []permission.SectionPermission{
				{SectionID: "purchasing", Pages: []permission.PagePermission{
					{PageID: "suppliers", Actions: viewOnly},
					{PageID: "suppliers", Actions: permission.ModuleActions{Print: true}},
				}},
			}

			tree = permission.UpdatePageAction(tree, "purchasing", "suppliers", permission.ActionView, false)

			Expect(tree).To(Equal([]permission.SectionPermission{
				{SectionID: "purchasing", Pages: []permission.PagePermission{
					{PageID: "suppliers", Actions: permission.ModuleActions{Print: true}},
				}},
			}))
		})

		It("should merge repeated sections and pages in order of first appearance", func() {
			merged := permission.MergeSections([]permission.SectionPermission{
				{SectionID: "purchasing", Pages: []permission.PagePermission{{PageID: "suppliers", Actions: viewOnly}}},
				{SectionID: "sales", Pages: []permission.PagePermission{{PageID: "customers", Actions: viewOnly}}},
				{SectionID: "purchasing", Pages: []permission.PagePermission{
					{PageID: "raw-materials", Actions: viewOnly},
					{PageID: "suppliers", Actions: permission.ModuleActions{Edit: true}},
				}},
			})

			Expect(merged).To(Equal([]permission.SectionPermission{
				{SectionID: "purchasing", Pages: []permission.PagePermission{
					{PageID: "suppliers", Actions: permission.ModuleActions{View: true, Edit: true}},
					{PageID: "raw-materials", Actions: viewOnly},
				}},
				{SectionID: "sales", Pages: []permission.PagePermission{{PageID: "customers", Actions: viewOnly}}},
			}))
			Expect(permission.MergeSections(nil)).To(BeNil())
		})
	})

	Describe("Prune", func() {
		It("should drop empty pages and sections", func() {
			pruned := permission.Prune([]permission.SectionPermission{
				{SectionID: "purchasing", Pages: []permission.PagePermission{
					{PageID: "suppliers", Actions: permission.DefaultActions()},
				}},
				{SectionID: "reports", Pages: []permission.PagePermission{
					{PageID: "purchase-reports", Actions: permission.ModuleActions{Print: true}},
					{PageID: "general-reports"},
				}},
				{SectionID: "sales"},
			})

			Expect(pruned).To(Equal([]permission.SectionPermission{
				{SectionID: "reports", Pages: []permission.PagePermission{
					{PageID: "purchase-reports", Actions: permission.ModuleActions{Print: true}},
				}},
			}))
		})
	})
})
