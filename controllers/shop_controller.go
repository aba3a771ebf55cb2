package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tableorder/models"
	"tableorder/services"
	"tableorder/utils"
)

type ShopController struct {
	shops  *services.ShopService
	menus  *services.MenuService
	tokens *utils.TableTokens
}

func NewShopController(shops *services.ShopService, menus *services.MenuService, tokens *utils.TableTokens) *ShopController {
	return &ShopController{shops: shops, menus: menus, tokens: tokens}
}

func (sc *ShopController) Register(api *gin.RouterGroup) {
	api.GET("/shops", sc.ListShops)
	api.POST("/shops", sc.CreateShop)
	api.GET("/shops/:shopId", sc.GetShop)
	api.PATCH("/shops/:shopId", sc.UpdateShop)
	api.DELETE("/shops/:shopId", sc.DeleteShop)

	api.GET("/shops/:shopId/menu", sc.GetMenu)
	api.PUT("/shops/:shopId/menu", sc.ReplaceMenu)
	api.POST("/shops/:shopId/menu/publish", sc.publish(true))
	api.POST("/shops/:shopId/menu/unpublish", sc.publish(false))
	api.POST("/shops/:shopId/menu/items", sc.AddMenuItem)
	api.DELETE("/shops/:shopId/menu/items/:itemId", sc.RemoveMenuItem)

	api.GET("/shops/:shopId/tables/:tableNo/token", sc.IssueTableToken)
	api.GET("/tables/:shopId", sc.ListTables)
	api.PUT("/tables/:shopId", sc.ReplaceTables)
}

func (sc *ShopController) ListShops(c *gin.Context) {
	defer record(c, "shop", "list")

	shops, err := sc.shops.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shops)
}

func (sc *ShopController) CreateShop(c *gin.Context) {
	defer record(c, "shop", "create")

	var in models.CreateShopInput
	if !bindJSON(c, &in) {
		return
	}
	shop, err := sc.shops.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shop)
}

func (sc *ShopController) GetShop(c *gin.Context) {
	defer record(c, "shop", "get")

	shop, err := sc.shops.Get(c.Request.Context(), c.Param("shopId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shop)
}

func (sc *ShopController) UpdateShop(c *gin.Context) {
	defer record(c, "shop", "update")

	var in models.UpdateShopInput
	if !bindJSON(c, &in) {
		return
	}
	shop, err := sc.shops.Update(c.Request.Context(), c.Param("shopId"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shop)
}

func (sc *ShopController) DeleteShop(c *gin.Context) {
	defer record(c, "shop", "delete")

	if err := sc.shops.Delete(c.Request.Context(), c.Param("shopId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (sc *ShopController) GetMenu(c *gin.Context) {
	defer record(c, "menu", "get")

	menu, err := sc.menus.Get(c.Request.Context(), c.Param("shopId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

func (sc *ShopController) ReplaceMenu(c *gin.Context) {
	defer record(c, "menu", "replace")

	var menu models.ShopMenu
	if !bindJSON(c, &menu) {
		return
	}
	saved, err := sc.menus.Replace(c.Request.Context(), c.Param("shopId"), menu)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (sc *ShopController) publish(published bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer record(c, "menu", "publish")

		menu, err := sc.menus.SetPublished(c.Request.Context(), c.Param("shopId"), published)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, menu)
	}
}

func (sc *ShopController) AddMenuItem(c *gin.Context) {
	defer record(c, "menu", "add_item")

	var item models.MenuItem
	if !bindJSON(c, &item) {
		return
	}
	menu, err := sc.menus.AddItem(c.Request.Context(), c.Param("shopId"), item)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, menu)
}

func (sc *ShopController) RemoveMenuItem(c *gin.Context) {
	defer record(c, "menu", "remove_item")

	menu, err := sc.menus.RemoveItem(c.Request.Context(), c.Param("shopId"), c.Param("itemId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

func (sc *ShopController) ListTables(c *gin.Context) {
	defer record(c, "table", "list")

	tables, err := sc.shops.Tables(c.Request.Context(), c.Param("shopId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

type replaceTablesRequest struct {
	Tables []string `json:"tables"`
}

func (sc *ShopController) ReplaceTables(c *gin.Context) {
	defer record(c, "table", "replace")

	var req replaceTablesRequest
	if !bindJSON(c, &req) {
		return
	}
	tables, err := sc.shops.ReplaceTables(c.Request.Context(), c.Param("shopId"), req.Tables)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

// IssueTableToken 生成桌码令牌
func (sc *ShopController) IssueTableToken(c *gin.Context) {
	defer record(c, "table", "token")

	table, err := sc.shops.Table(c.Request.Context(), c.Param("shopId"), c.Param("tableNo"))
	if err != nil {
		respondError(c, err)
		return
	}
	token, expires, err := sc.tokens.Issue(table.ShopID, table.TableNo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"shopId":    table.ShopID,
		"tableNo":   table.TableNo,
		"token":     token,
		"expiresAt": expires.Format(time.RFC3339),
	})
}
