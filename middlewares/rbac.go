package middlewares

import (
	"fmt"
	"log"
	"net/http"

	"learnhub/config"

	"github.com/casbin/casbin/v2"
	mongodbadapter "github.com/casbin/mongodb-adapter/v3"
	"github.com/gin-gonic/gin"
)

var enforcer *casbin.Enforcer

// Default policies seeded on first boot: admins own the admin surface,
// instructors own course authoring, everyone authenticated is a student.
var defaultPolicies = [][]string{
	{"admin", "/admin/*", "*"},
	{"moderator", "/admin/blogs/*", "*"},
	{"instructor", "/instructor/*", "*"},
	{"admin", "/instructor/*", "*"},
}

// InitCasbin initializes the Casbin enforcer with the MongoDB adapter
func InitCasbin(cfg *config.Config) error {
	adapter, err := mongodbadapter.NewAdapter(cfg.Database.URI)
	if err != nil {
		return fmt.Errorf("failed to create Casbin adapter: %w", err)
	}

	enforcer, err = casbin.NewEnforcer("./rbac_model.conf", adapter)
	if err != nil {
		return fmt.Errorf("failed to create Casbin enforcer: %w", err)
	}

	if err := enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to load Casbin policy: %w", err)
	}

	for _, policy := range defaultPolicies {
		if ok, _ := enforcer.HasPolicy(policy[0], policy[1], policy[2]); !ok {
			if _, err := enforcer.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
				return fmt.Errorf("failed to seed policy %v: %w", policy, err)
			}
		}
	}

	log.Println("Casbin RBAC initialized")
	return nil
}

// RBACMiddleware enforces role-based access on the request path. It must run
// after AuthMiddleware so the role is already resolved.
func RBACMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if enforcer == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "RBAC is not initialized"})
			c.Abort()
			return
		}

		role := c.GetString("role")
		if role == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		allowed, err := enforcer.Enforce(role, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			log.Printf("Casbin enforce error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Authorization check failed"})
			c.Abort()
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}
