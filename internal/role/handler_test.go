package role_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"

	roleDatamodel "github.com/frahmantamala/erp-rbac/internal/core/datamodel/role"
	"github.com/frahmantamala/erp-rbac/internal/core/permission"
	"github.com/frahmantamala/erp-rbac/internal/role"
	rolePostgres "github.com/frahmantamala/erp-rbac/internal/role/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRoleRouter(h *role.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/catalog", h.GetCatalog)
	r.Route("/roles", func(rr chi.Router) {
		rr.Get("/", h.ListRoles)
		rr.Post("/", h.CreateRole)
		rr.Get("/{id}", h.GetRole)
		rr.Put("/{id}", h.UpdateRole)
		rr.Delete("/{id}", h.DeleteRole)
		rr.Patch("/{id}/pages", h.UpdatePageAction)
		rr.Patch("/{id}/modules", h.UpdateModuleAction)
		rr.Patch("/{id}/sections", h.UpdateSection)
		rr.Post("/{id}/duplicate", h.DuplicateRole)
		rr.Get("/{id}/status", h.GetSelectionStatus)
		rr.Get("/{id}/check", h.CheckPermission)
	})
	return r
}

func idPath(id int64) string {
	return strconv.FormatInt(id, 10)
}

func jsonBody(v interface{}) *bytes.Buffer {
	raw, err := json.Marshal(v)
	Expect(err).NotTo(HaveOccurred())
	return bytes.NewBuffer(raw)
}

var _ = Describe("Role Handler Integration", func() {
	var (
		db      *gorm.DB
		service *role.Service
		router  *chi.Mux
	)

	serve := func(method, target string, body *bytes.Buffer) *httptest.ResponseRecorder {
		var req *http.Request
		if body == nil {
			req = httptest.NewRequest(method, target, nil)
		} else {
			req = httptest.NewRequest(method, target, body)
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		err = db.AutoMigrate(&roleDatamodel.Role{}, &roleDatamodel.RolePermission{})
		Expect(err).NotTo(HaveOccurred())

		service = role.NewService(rolePostgres.NewRoleRepository(db), permission.DefaultCatalog(), nil, nil, slogger)
		handler := role.NewHandler(service)
		handler.Logger = slogger
		router = newRoleRouter(handler)
	})

	It("should serve the catalog in both shapes", func() {
		w := serve(http.MethodGet, "/catalog", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp role.CatalogResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Modules).To(HaveLen(12))
		Expect(resp.Sections).To(HaveLen(6))
		Expect(resp.Actions).To(Equal(permission.Actions))
		Expect(resp.Labels).To(Equal(permission.ActionLabels))
		Expect(resp.Labels).To(HaveKeyWithValue(permission.ActionApprove, "اعتماد"))
	})

	It("should create a role and read it back", func() {
		w := serve(http.MethodPost, "/roles/", jsonBody(map[string]interface{}{
			"name":        "محاسب",
			"description": "حسابات المبيعات",
			"permissions": []map[string]interface{}{
				{"module": "sales", "actions": map[string]bool{
					"view": true, "create": false, "edit": false, "delete": false,
					"duplicate": false, "approve": false, "print": true,
				}},
			},
		}))
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created role.RoleResponse
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.Diagnostics).To(BeNil())
		Expect(created.Role.Name).To(Equal("محاسب"))
		Expect(created.Role.HasPagePermission("reports", "sales-reports", permission.ActionPrint)).To(BeTrue())

		w = serve(http.MethodGet, "/roles/"+idPath(created.Role.ID), nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var fetched role.RoleResponse
		Expect(json.NewDecoder(w.Body).Decode(&fetched)).To(Succeed())
		Expect(fetched.Role.Permissions).To(Equal(created.Role.Permissions))
		Expect(fetched.Role.HierarchicalPermissions).To(Equal(created.Role.HierarchicalPermissions))
	})

	It("should reject partial action sets", func() {
		w := serve(http.MethodPost, "/roles/", jsonBody(map[string]interface{}{
			"name": "broken",
			"permissions": []map[string]interface{}{
				{"module": "sales", "actions": map[string]bool{"view": true}},
			},
		}))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should report a role without grants as a validation error", func() {
		w := serve(http.MethodPost, "/roles/", jsonBody(role.CreateRoleDTO{
			Name:        "nothing",
			Permissions: []permission.Permission{permission.DefaultPermission(permission.ModuleSales)},
		}))
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		var body map[string]map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body["error"]["code"]).To(Equal("NO_PERMISSION_SELECTED"))
	})

	It("should return diagnostics for dropped pages", func() {
		w := serve(http.MethodPost, "/roles/", jsonBody(role.CreateRoleDTO{
			Name: "stale form",
			HierarchicalPermissions: []permission.SectionPermission{
				{SectionID: "inventory", Pages: []permission.PagePermission{
					{PageID: "stock", Actions: permission.ModuleActions{View: true}},
					{PageID: "transfers", Actions: permission.ModuleActions{View: true}},
				}},
			},
		}))
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created role.RoleResponse
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.Diagnostics).NotTo(BeNil())
		Expect(created.Diagnostics.DroppedPages).To(ConsistOf(permission.DroppedPage{SectionID: "inventory", PageID: "transfers"}))
	})

	Context("with a stored role", func() {
		var stored *role.Role

		BeforeEach(func() {
			var err error
			stored, _, err = service.CreateRole(context.Background(), role.CreateRoleDTO{
				Name: "buyer",
				Permissions: []permission.Permission{
					{Module: permission.ModulePurchases, Actions: permission.ModuleActions{View: true}},
				},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should list roles", func() {
			w := serve(http.MethodGet, "/roles/", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp role.RolesResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Roles).To(HaveLen(1))
			Expect(resp.Roles[0].Name).To(Equal("buyer"))
		})

		It("should toggle a page action", func() {
			w := serve(http.MethodPatch, "/roles/"+idPath(stored.ID)+"/pages", jsonBody(role.PageActionDTO{
				SectionID: "purchasing", PageID: "purchase-returns", Action: "approve", Checked: true,
			}))
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp role.RoleResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Role.HasPagePermission("purchasing", "purchase-returns", permission.ActionApprove)).To(BeTrue())
			Expect(resp.Role.HasPagePermission("purchasing", "purchase-orders", permission.ActionApprove)).To(BeFalse())
			Expect(resp.Role.HasPermission(permission.ModulePurchases, permission.ActionApprove)).To(BeTrue())
		})

		It("should select every action of a page", func() {
			w := serve(http.MethodPatch, "/roles/"+idPath(stored.ID)+"/pages", jsonBody(role.PageActionDTO{
				SectionID: "purchasing", PageID: "suppliers", Action: role.ActionAll, Checked: true,
			}))
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp role.RoleResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Role.AllowedActions(permission.ModuleSuppliers)).To(Equal(permission.Actions))
		})

		It("should toggle a module action on every page of the module", func() {
			w := serve(http.MethodPatch, "/roles/"+idPath(stored.ID)+"/modules", jsonBody(role.ModuleActionDTO{
				Module: permission.ModulePurchases, Action: "print", Checked: true,
			}))
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp role.RoleResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Role.HasPagePermission("purchasing", "purchase-orders", permission.ActionPrint)).To(BeTrue())
			Expect(resp.Role.HasPagePermission("purchasing", "purchase-returns", permission.ActionPrint)).To(BeTrue())
			Expect(resp.Role.HasPagePermission("reports", "purchase-reports", permission.ActionPrint)).To(BeTrue())
		})

		It("should reject an unknown module", func() {
			w := serve(http.MethodPatch, "/roles/"+idPath(stored.ID)+"/modules", jsonBody(role.ModuleActionDTO{
				Module: "payroll", Action: "view", Checked: true,
			}))
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should select a whole section", func() {
			w := serve(http.MethodPatch, "/roles/"+idPath(stored.ID)+"/sections", jsonBody(role.SectionActionDTO{
				SectionID: "sales", Checked: true,
			}))
			Expect(w.Code).To(Equal(http.StatusOK))

			status := serve(http.MethodGet, "/roles/"+idPath(stored.ID)+"/status", nil)
			var resp role.StatusResponse
			Expect(json.NewDecoder(status.Body).Decode(&resp)).To(Succeed())
			for _, s := range resp.Sections {
				if s.SectionID == "sales" {
					Expect(s.Status).To(Equal(permission.StatusAll))
				}
			}
		})

		It("should reject an unknown page", func() {
			w := serve(http.MethodPatch, "/roles/"+idPath(stored.ID)+"/pages", jsonBody(role.PageActionDTO{
				SectionID: "purchasing", PageID: "invoices", Action: "view", Checked: true,
			}))
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should update the role", func() {
			w := serve(http.MethodPut, "/roles/"+idPath(stored.ID), jsonBody(role.CreateRoleDTO{
				Name: "senior buyer",
				Permissions: []permission.Permission{
					{Module: permission.ModulePurchases, Actions: permission.FullActions()},
				},
			}))
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp role.RoleResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Role.Name).To(Equal("senior buyer"))
			Expect(resp.Role.AllowedActions(permission.ModulePurchases)).To(Equal(permission.Actions))
		})

		It("should duplicate the role", func() {
			w := serve(http.MethodPost, "/roles/"+idPath(stored.ID)+"/duplicate", jsonBody(role.DuplicateRoleDTO{Name: "buyer copy"}))
			Expect(w.Code).To(Equal(http.StatusCreated))

			w = serve(http.MethodPost, "/roles/"+idPath(stored.ID)+"/duplicate", jsonBody(role.DuplicateRoleDTO{Name: "buyer copy"}))
			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("should report selection status", func() {
			w := serve(http.MethodGet, "/roles/"+idPath(stored.ID)+"/status", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp role.StatusResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.RoleID).To(Equal(stored.ID))
			for _, s := range resp.Sections {
				if s.SectionID == "purchasing" {
					Expect(s.Status).To(Equal(permission.StatusPartial))
				}
			}
		})

		It("should answer permission checks", func() {
			w := serve(http.MethodGet, "/roles/"+idPath(stored.ID)+"/check?module=purchases&action=view", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp role.CheckResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Granted).To(BeTrue())

			w = serve(http.MethodGet, "/roles/"+idPath(stored.ID)+"/check", nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should delete the role", func() {
			w := serve(http.MethodDelete, "/roles/"+idPath(stored.ID), nil)
			Expect(w.Code).To(Equal(http.StatusNoContent))

			w = serve(http.MethodGet, "/roles/"+idPath(stored.ID), nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	It("should reject malformed ids", func() {
		w := serve(http.MethodGet, "/roles/abc", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
