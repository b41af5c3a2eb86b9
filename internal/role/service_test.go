package role_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/frahmantamala/erp-rbac/internal"
	roleDatamodel "github.com/frahmantamala/erp-rbac/internal/core/datamodel/role"
	"github.com/frahmantamala/erp-rbac/internal/core/events"
	"github.com/frahmantamala/erp-rbac/internal/core/permission"
	"github.com/frahmantamala/erp-rbac/internal/role"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// MockRepository keeps role rows in memory.
type MockRepository struct {
	roles     map[int64]*roleDatamodel.Role
	nextID    int64
	failError error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{roles: make(map[int64]*roleDatamodel.Role), nextID: 1}
}

func copyRow(row *roleDatamodel.Role) *roleDatamodel.Role {
	c := *row
	c.Permissions = append([]roleDatamodel.RolePermission(nil), row.Permissions...)
	c.HierarchicalPermissions = append([]byte(nil), row.HierarchicalPermissions...)
	return &c
}

func (m *MockRepository) GetAll(ctx context.Context) ([]*roleDatamodel.Role, error) {
	if m.failError != nil {
		return nil, m.failError
	}
	var out []*roleDatamodel.Role
	for id := int64(1); id < m.nextID; id++ {
		if row, ok := m.roles[id]; ok {
			out = append(out, copyRow(row))
		}
	}
	return out, nil
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*roleDatamodel.Role, error) {
	if m.failError != nil {
		return nil, m.failError
	}
	row, ok := m.roles[id]
	if !ok {
		return nil, nil
	}
	return copyRow(row), nil
}

func (m *MockRepository) GetByName(ctx context.Context, name string) (*roleDatamodel.Role, error) {
	if m.failError != nil {
		return nil, m.failError
	}
	for _, row := range m.roles {
		if row.Name == name {
			return copyRow(row), nil
		}
	}
	return nil, nil
}

func (m *MockRepository) Create(ctx context.Context, row *roleDatamodel.Role) error {
	if m.failError != nil {
		return m.failError
	}
	row.ID = m.nextID
	m.nextID++
	m.roles[row.ID] = copyRow(row)
	return nil
}

func (m *MockRepository) Update(ctx context.Context, row *roleDatamodel.Role) error {
	if m.failError != nil {
		return m.failError
	}
	m.roles[row.ID] = copyRow(row)
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	if m.failError != nil {
		return m.failError
	}
	delete(m.roles, id)
	return nil
}

// MockCache is a map-backed role.Cache.
type MockCache struct {
	mu      sync.Mutex
	entries map[int64]*role.Role
	deletes []int64
}

func NewMockCache() *MockCache {
	return &MockCache{entries: make(map[int64]*role.Role)}
}

func (c *MockCache) Get(ctx context.Context, id int64) (*role.Role, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[id]
	return r.Clone(), ok, nil
}

func (c *MockCache) Set(ctx context.Context, r *role.Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[r.ID] = r.Clone()
	return nil
}

func (c *MockCache) Delete(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.deletes = append(c.deletes, id)
	return nil
}

// MockPublisher records published events.
type MockPublisher struct {
	published []events.Event
}

func (p *MockPublisher) Publish(ctx context.Context, event events.Event) error {
	p.published = append(p.published, event)
	return nil
}

func (p *MockPublisher) Types() []string {
	var out []string
	for _, e := range p.published {
		out = append(out, e.EventType())
	}
	return out
}

func flatCreateDTO(name string, perms ...permission.Permission) role.CreateRoleDTO {
	return role.CreateRoleDTO{Name: name, Description: "test role", Permissions: perms}
}

var _ = Describe("Role Service", func() {
	var (
		ctx       context.Context
		repo      *MockRepository
		cache     *MockCache
		publisher *MockPublisher
		service   *role.Service
		viewOnly  = permission.ModuleActions{View: true}
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = NewMockRepository()
		cache = NewMockCache()
		publisher = &MockPublisher{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = role.NewService(repo, permission.DefaultCatalog(), cache, publisher, logger)
	})

	Describe("CreateRole", func() {
		It("should persist both views from a flat payload", func() {
			created, diag, err := service.CreateRole(ctx, flatCreateDTO("  storekeeper  ",
				permission.Permission{Module: permission.ModuleInventory, Actions: viewOnly},
			))

			Expect(err).NotTo(HaveOccurred())
			Expect(diag.Empty()).To(BeTrue())
			Expect(created.ID).To(BeNumerically(">", 0))
			Expect(created.Name).To(Equal("storekeeper"))
			Expect(created.Active).To(BeTrue())
			Expect(created.HasPagePermission("inventory", "stock", permission.ActionView)).To(BeTrue())

			stored, err := service.GetRole(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Permissions).To(Equal(created.Permissions))
			Expect(stored.HierarchicalPermissions).To(Equal(created.HierarchicalPermissions))
			Expect(publisher.Types()).To(Equal([]string{events.EventTypeRoleCreated}))
		})

		It("should treat the tree as authoritative when present", func() {
			dto := role.CreateRoleDTO{
				Name: "report reader",
				Permissions: []permission.Permission{
					{Module: permission.ModuleUsers, Actions: permission.FullActions()},
				},
				HierarchicalPermissions: []permission.SectionPermission{
					{SectionID: "reports", Pages: []permission.PagePermission{
						{PageID: "general-reports", Actions: viewOnly},
						{PageID: "retired-report", Actions: viewOnly},
					}},
				},
			}

			created, diag, err := service.CreateRole(ctx, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(diag.DroppedPages).To(Equal([]permission.DroppedPage{{SectionID: "reports", PageID: "retired-report"}}))
			Expect(created.Permissions).To(Equal([]permission.Permission{{Module: permission.ModuleReports, Actions: viewOnly}}))
			Expect(created.HasAnyPermission(permission.ModuleUsers)).To(BeFalse())
		})

		It("should report merged and unknown modules", func() {
			_, diag, err := service.CreateRole(ctx, flatCreateDTO("merged",
				permission.Permission{Module: permission.ModuleSales, Actions: viewOnly},
				permission.Permission{Module: permission.ModuleSales, Actions: permission.ModuleActions{Print: true}},
				permission.Permission{Module: "legacy", Actions: viewOnly},
			))
			Expect(err).NotTo(HaveOccurred())
			Expect(diag.MergedModules).To(Equal([]string{permission.ModuleSales}))
			Expect(diag.UnknownModules).To(Equal([]string{"legacy"}))
		})

		It("should reject a role without any grant", func() {
			_, _, err := service.CreateRole(ctx, flatCreateDTO("empty", permission.DefaultPermission(permission.ModuleSales)))
			Expect(err).To(MatchError(internal.ErrNoPermissionSelected))
			Expect(repo.roles).To(BeEmpty())
		})

		It("should reject a blank name", func() {
			_, _, err := service.CreateRole(ctx, flatCreateDTO("   ", permission.Permission{Module: permission.ModuleSales, Actions: viewOnly}))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})

		It("should reject a duplicate name", func() {
			_, _, err := service.CreateRole(ctx, flatCreateDTO("cashier", permission.Permission{Module: permission.ModuleSales, Actions: viewOnly}))
			Expect(err).NotTo(HaveOccurred())

			_, _, err = service.CreateRole(ctx, flatCreateDTO("cashier", permission.Permission{Module: permission.ModuleSales, Actions: viewOnly}))
			Expect(err).To(MatchError(internal.ErrRoleNameTaken))
		})

		It("should wrap repository failures", func() {
			repo.failError = errors.New("connection refused")
			_, _, err := service.CreateRole(ctx, flatCreateDTO("cashier", permission.Permission{Module: permission.ModuleSales, Actions: viewOnly}))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})
	})

	Describe("GetRole", func() {
		It("should return not found for a missing role", func() {
			_, err := service.GetRole(ctx, 42)
			Expect(err).To(MatchError(internal.ErrRoleNotFound))
		})

		It("should serve repeated reads from the cache", func() {
			created, _, err := service.CreateRole(ctx, flatCreateDTO("cashier", permission.Permission{Module: permission.ModuleSales, Actions: viewOnly}))
			Expect(err).NotTo(HaveOccurred())

			_, err = service.GetRole(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(cache.entries).To(HaveKey(created.ID))

			repo.failError = errors.New("database down")
			cached, err := service.GetRole(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(cached.Name).To(Equal("cashier"))
		})
	})

	Describe("UpdateRole", func() {
		var existing *role.Role

		BeforeEach(func() {
			var err error
			existing, _, err = service.CreateRole(ctx, flatCreateDTO("cashier", permission.Permission{Module: permission.ModuleSales, Actions: viewOnly}))
			Expect(err).NotTo(HaveOccurred())
			_, err = service.GetRole(ctx, existing.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should replace the grants and invalidate the cache", func() {
			inactive := false
			dto := role.UpdateRoleDTO{ID: existing.ID, CreateRoleDTO: flatCreateDTO("cashier",
				permission.Permission{Module: permission.ModuleCustomers, Actions: viewOnly},
			)}
			dto.Active = &inactive

			updated, _, err := service.UpdateRole(ctx, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Active).To(BeFalse())
			Expect(updated.HasAnyPermission(permission.ModuleSales)).To(BeFalse())
			Expect(updated.HasPagePermission("sales", "customers", permission.ActionView)).To(BeTrue())
			Expect(updated.CreatedAt).To(Equal(existing.CreatedAt))
			Expect(cache.entries).NotTo(HaveKey(existing.ID))
			Expect(publisher.Types()).To(ContainElement(events.EventTypeRoleUpdated))
		})

		It("should reject a name held by another role", func() {
			_, _, err := service.CreateRole(ctx, flatCreateDTO("supervisor", permission.Permission{Module: permission.ModuleSales, Actions: viewOnly}))
			Expect(err).NotTo(HaveOccurred())

			dto := role.UpdateRoleDTO{ID: existing.ID, CreateRoleDTO: flatCreateDTO("supervisor", permission.Permission{Module: permission.ModuleSales, Actions: viewOnly})}
			_, _, err = service.UpdateRole(ctx, dto)
			Expect(err).To(MatchError(internal.ErrRoleNameTaken))
		})

		It("should return not found for a missing role", func() {
			dto := role.UpdateRoleDTO{ID: 999, CreateRoleDTO: flatCreateDTO("ghost", permission.Permission{Module: permission.ModuleSales, Actions: viewOnly})}
			_, _, err := service.UpdateRole(ctx, dto)
			Expect(err).To(MatchError(internal.ErrRoleNotFound))
		})
	})

	Describe("DeleteRole", func() {
		It("should remove the role and publish the deletion", func() {
			created, _, err := service.CreateRole(ctx, flatCreateDTO("temp", permission.Permission{Module: permission.ModuleSales, Actions: viewOnly}))
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteRole(ctx, created.ID)).To(Succeed())
			Expect(repo.roles).NotTo(HaveKey(created.ID))
			Expect(cache.deletes).To(ContainElement(created.ID))
			Expect(publisher.Types()).To(ContainElement(events.EventTypeRoleDeleted))
		})

		It("should return not found for a missing role", func() {
			Expect(service.DeleteRole(ctx, 5)).To(MatchError(internal.ErrRoleNotFound))
		})
	})

	Describe("UpdatePageAction", func() {
		var existing *role.Role

		BeforeEach(func() {
			var err error
			existing, _, err = service.CreateRole(ctx, flatCreateDTO("buyer", permission.Permission{Module: permission.ModuleSuppliers, Actions: viewOnly}))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should grant the action and keep both views in step", func() {
			updated, err := service.UpdatePageAction(ctx, existing.ID, role.PageActionDTO{
				SectionID: "purchasing", PageID: "purchase-orders", Action: "create", Checked: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.HasPagePermission("purchasing", "purchase-orders", permission.ActionCreate)).To(BeTrue())
			Expect(updated.HasPermission(permission.ModulePurchases, permission.ActionCreate)).To(BeTrue())

			stored, err := service.GetRole(ctx, existing.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.HierarchicalPermissions).To(Equal(updated.HierarchicalPermissions))
		})

		It("should prune the page when its last action is cleared", func() {
			_, err := service.UpdatePageAction(ctx, existing.ID, role.PageActionDTO{
				SectionID: "purchasing", PageID: "raw-materials", Action: "view", Checked: true,
			})
			Expect(err).NotTo(HaveOccurred())

			updated, err := service.UpdatePageAction(ctx, existing.ID, role.PageActionDTO{
				SectionID: "purchasing", PageID: "raw-materials", Action: "view", Checked: false,
			})
			Expect(err).NotTo(HaveOccurred())
			section, ok := permission.FindSection(updated.HierarchicalPermissions, "purchasing")
			Expect(ok).To(BeTrue())
			_, pagePresent := section.FindPage("raw-materials")
			Expect(pagePresent).To(BeFalse())
		})

		It("should refuse to clear the last grant of a role", func() {
			_, err := service.UpdatePageAction(ctx, existing.ID, role.PageActionDTO{
				SectionID: "purchasing", PageID: "suppliers", Action: "view", Checked: false,
			})
			Expect(err).To(MatchError(internal.ErrNoPermissionSelected))
		})

		DescribeTable("should validate the target",
			func(dto role.PageActionDTO, expected error) {
				_, err := service.UpdatePageAction(ctx, existing.ID, dto)
				Expect(err).To(MatchError(expected))
			},
			Entry("unknown action", role.PageActionDTO{SectionID: "sales", PageID: "customers", Action: "export", Checked: true}, internal.ErrInvalidAction),
			Entry("unknown section", role.PageActionDTO{SectionID: "hr", PageID: "customers", Action: "view", Checked: true}, internal.ErrUnknownSection),
			Entry("page outside section", role.PageActionDTO{SectionID: "sales", PageID: "suppliers", Action: "view", Checked: true}, internal.ErrUnknownPage),
		)
	})

	Describe("select-all edits", func() {
		var existing *role.Role

		BeforeEach(func() {
			var err error
			existing, _, err = service.CreateRole(ctx, flatCreateDTO("storekeeper", permission.Permission{Module: permission.ModuleInventory, Actions: viewOnly}))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should select and clear every action of a page", func() {
			updated, err := service.UpdatePageAction(ctx, existing.ID, role.PageActionDTO{
				SectionID: "sales", PageID: "customers", Action: role.ActionAll, Checked: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(permission.PageStatus(updated.HierarchicalPermissions, "sales", "customers")).To(Equal(permission.StatusAll))

			updated, err = service.UpdatePageAction(ctx, existing.ID, role.PageActionDTO{
				SectionID: "sales", PageID: "customers", Action: role.ActionAll, Checked: false,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.HasAnyPermission(permission.ModuleCustomers)).To(BeFalse())
		})

		It("should mirror a module action onto its pages and persist it", func() {
			updated, err := service.UpdateModuleAction(ctx, existing.ID, role.ModuleActionDTO{
				Module: permission.ModuleSales, Action: "approve", Checked: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.HasPagePermission("sales", "sales-invoices", permission.ActionApprove)).To(BeTrue())
			Expect(updated.HasPagePermission("reports", "sales-reports", permission.ActionApprove)).To(BeTrue())
			Expect(cache.entries).NotTo(HaveKey(existing.ID))
			Expect(publisher.Types()).To(ContainElement(events.EventTypeRoleUpdated))

			stored, err := service.GetRole(ctx, existing.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.HasPermission(permission.ModuleSales, permission.ActionApprove)).To(BeTrue())
		})

		It("should grant every action on a module", func() {
			updated, err := service.UpdateModuleAction(ctx, existing.ID, role.ModuleActionDTO{
				Module: permission.ModuleProducts, Action: role.ActionAll, Checked: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.AllowedActions(permission.ModuleProducts)).To(Equal(permission.Actions))
		})

		It("should refuse to clear the only granted module", func() {
			_, err := service.UpdateModuleAction(ctx, existing.ID, role.ModuleActionDTO{
				Module: permission.ModuleInventory, Action: role.ActionAll, Checked: false,
			})
			Expect(err).To(MatchError(internal.ErrNoPermissionSelected))
		})

		It("should select a whole section", func() {
			updated, err := service.UpdateSection(ctx, existing.ID, role.SectionActionDTO{SectionID: "purchasing", Checked: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(permission.DefaultCatalog().SectionStatus(updated.HierarchicalPermissions, "purchasing")).To(Equal(permission.StatusAll))
			Expect(updated.AllowedActions(permission.ModuleSuppliers)).To(Equal(permission.Actions))
		})

		DescribeTable("should validate the target",
			func(apply func() error, expected error) {
				Expect(apply()).To(MatchError(expected))
			},
			Entry("unknown module", func() error {
				_, err := service.UpdateModuleAction(ctx, existing.ID, role.ModuleActionDTO{Module: "payroll", Action: "view", Checked: true})
				return err
			}, internal.ErrUnknownModule),
			Entry("unknown module action", func() error {
				_, err := service.UpdateModuleAction(ctx, existing.ID, role.ModuleActionDTO{Module: permission.ModuleSales, Action: "export", Checked: true})
				return err
			}, internal.ErrInvalidAction),
			Entry("unknown section", func() error {
				_, err := service.UpdateSection(ctx, existing.ID, role.SectionActionDTO{SectionID: "hr", Checked: true})
				return err
			}, internal.ErrUnknownSection),
		)
	})

	Describe("DuplicateRole", func() {
		It("should copy the grants under a new name", func() {
			source, _, err := service.CreateRole(ctx, flatCreateDTO("cashier", permission.Permission{Module: permission.ModuleSales, Actions: viewOnly}))
			Expect(err).NotTo(HaveOccurred())

			copied, err := service.DuplicateRole(ctx, source.ID, role.DuplicateRoleDTO{Name: "cashier 2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(copied.ID).NotTo(Equal(source.ID))
			Expect(copied.Description).To(Equal(source.Description))
			Expect(copied.Permissions).To(Equal(source.Permissions))
			Expect(copied.HierarchicalPermissions).To(Equal(source.HierarchicalPermissions))
		})

		It("should reject an existing name", func() {
			source, _, err := service.CreateRole(ctx, flatCreateDTO("cashier", permission.Permission{Module: permission.ModuleSales, Actions: viewOnly}))
			Expect(err).NotTo(HaveOccurred())

			_, err = service.DuplicateRole(ctx, source.ID, role.DuplicateRoleDTO{Name: "cashier"})
			Expect(err).To(MatchError(internal.ErrRoleNameTaken))
		})
	})

	Describe("SelectionStatus", func() {
		It("should roll up every module, section and page", func() {
			created, _, err := service.CreateRole(ctx, role.CreateRoleDTO{
				Name: "sales desk",
				Permissions: []permission.Permission{
					{Module: permission.ModuleSales, Actions: permission.ModuleActions{View: true, Create: true}},
					{Module: permission.ModuleCustomers, Actions: permission.FullActions()},
				},
			})
			Expect(err).NotTo(HaveOccurred())

			status, err := service.SelectionStatus(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(status.Modules).To(HaveLen(len(permission.DefaultCatalog().ModuleNames())))

			modules := map[string]permission.SelectionStatus{}
			for _, m := range status.Modules {
				modules[m.Module] = m.Status
			}
			Expect(modules[permission.ModuleSales]).To(Equal(permission.StatusPartial))
			Expect(modules[permission.ModuleCustomers]).To(Equal(permission.StatusAll))
			Expect(modules[permission.ModuleUsers]).To(Equal(permission.StatusNone))

			sections := map[string]permission.SelectionStatus{}
			for _, s := range status.Sections {
				sections[s.SectionID] = s.Status
			}
			Expect(sections["sales"]).To(Equal(permission.StatusPartial))
			Expect(sections["administration"]).To(Equal(permission.StatusNone))
		})
	})

	Describe("Check", func() {
		var created *role.Role

		BeforeEach(func() {
			var err error
			created, _, err = service.CreateRole(ctx, flatCreateDTO("viewer", permission.Permission{Module: permission.ModuleProducts, Actions: viewOnly}))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should answer action queries", func() {
			resp, err := service.Check(ctx, created.ID, permission.ModuleProducts, "view")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Granted).To(BeTrue())

			resp, err = service.Check(ctx, created.ID, permission.ModuleProducts, "delete")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Granted).To(BeFalse())
			Expect(resp.Allowed).To(Equal([]permission.ActionType{permission.ActionView}))
		})

		It("should answer any-action queries", func() {
			resp, err := service.Check(ctx, created.ID, permission.ModuleSettings, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Granted).To(BeFalse())
		})

		It("should reject unknown modules and actions", func() {
			_, err := service.Check(ctx, created.ID, "legacy", "view")
			Expect(err).To(MatchError(internal.ErrUnknownModule))
			_, err = service.Check(ctx, created.ID, permission.ModuleProducts, "export")
			Expect(err).To(MatchError(internal.ErrInvalidAction))
		})
	})

	Describe("SeedDefaults", func() {
		It("should create the built-in roles once", func() {
			seeded, err := service.SeedDefaults(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(seeded).To(HaveLen(3))
			Expect(repo.roles).To(HaveLen(3))

			again, err := service.SeedDefaults(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.roles).To(HaveLen(3))
			for i := range seeded {
				Expect(again[i].ID).To(Equal(seeded[i].ID))
				Expect(again[i].Permissions).To(Equal(seeded[i].Permissions))
			}
		})
	})

	Describe("ListRoles", func() {
		It("should list every stored role", func() {
			_, err := service.SeedDefaults(ctx)
			Expect(err).NotTo(HaveOccurred())

			roles, err := service.ListRoles(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(roles).To(HaveLen(3))
		})
	})
})
