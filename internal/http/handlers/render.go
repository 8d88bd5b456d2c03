package handlers

import "github.com/gofiber/fiber/v2"

const csrfLocal = "csrf"

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if shop := c.Locals("shop"); shop != nil {
		data["Shop"] = shop
	}
	tok, _ := c.Locals(csrfLocal).(string)
	if tok == "" {
		// csrf middleware not mounted on this route
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

func renderStatus(c *fiber.Ctx, status int, tmpl string, data fiber.Map) error {
	c.Status(status)
	return render(c, tmpl, data)
}

// fail renders the generic error page.
func fail(c *fiber.Ctx, status int, msg string) error {
	return renderStatus(c, status, "notfound", fiber.Map{"Message": msg})
}
