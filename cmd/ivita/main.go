// Command ivita is a terminal storefront client: browse the catalog, manage
// the local-first cart, and authenticate against the remote API.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/Mohamedmnem11/ivita/internal/app"
	"github.com/Mohamedmnem11/ivita/internal/cart"
	"github.com/Mohamedmnem11/ivita/internal/catalog"
	"github.com/Mohamedmnem11/ivita/internal/cli"
	"github.com/Mohamedmnem11/ivita/internal/config"
)

const usage = `usage: ivita <command> [args]

catalog:
  categories                  list categories
  brands                      list brands
  products <category-slug>    list products in a category ("all" for everything)
  product <slug>              show one product
  search <text>               search products

cart:
  cart ls                     show the cart
  cart add <product-slug> [qty]
  cart set <product-id> <qty>
  cart rm <product-id>
  cart clear

auth:
  login <phone>               request a WhatsApp verification code
  verify <phone> <code>       confirm the code and sign in
  whoami                      show the signed-in user
  logout                      clear credentials and the cart
`

func main() {
	out := cli.New()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	application, err := app.New(config.LoadOrDefault())
	if err != nil {
		out.Errorf("ivita: %v", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := run(ctx, application, out, os.Args[1], os.Args[2:]); err != nil {
		out.Errorf("ivita: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.Application, out *cli.Output, command string, args []string) error {
	switch command {
	case "categories":
		cats, err := a.Catalog.Categories(ctx)
		if err != nil {
			return err
		}
		w := newTable()
		fmt.Fprintln(w, "SLUG\tNAME")
		for _, c := range cats {
			fmt.Fprintf(w, "%s\t%s\n", c.Slug, c.Name)
		}
		return w.Flush()

	case "brands":
		brands, err := a.Catalog.Brands(ctx)
		if err != nil {
			return err
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tNAME")
		for _, b := range brands {
			fmt.Fprintf(w, "%s\t%s\n", b.ID, b.Name)
		}
		return w.Flush()

	case "products":
		if len(args) < 1 {
			return fmt.Errorf("products: category slug required")
		}
		products, err := a.Catalog.ProductsByCategory(ctx, args[0])
		if err != nil {
			return err
		}
		printProducts(products)
		return nil

	case "product":
		if len(args) < 1 {
			return fmt.Errorf("product: slug required")
		}
		p, err := a.Catalog.ProductBySlug(ctx, args[0])
		if err != nil {
			return err
		}
		out.Boldf("%s", p.Name)
		if p.HasDiscount {
			fmt.Printf("price: %.2f (was %.2f, -%d%%)\n", p.SalePrice, p.Price, p.DiscountPercent)
		} else {
			fmt.Printf("price: %.2f\n", p.EffectivePrice())
		}
		if p.Description != "" {
			fmt.Println(p.Description)
		}
		if !p.InStock {
			out.Warnf("out of stock")
		}
		return nil

	case "search":
		if len(args) < 1 {
			return fmt.Errorf("search: text required")
		}
		products, err := a.Catalog.Search(ctx, args[0])
		if err != nil {
			return err
		}
		printProducts(products)
		return nil

	case "cart":
		return runCart(ctx, a, args)

	case "login":
		if len(args) < 1 {
			return fmt.Errorf("login: phone required")
		}
		if err := a.Auth.LoginWhatsApp(ctx, args[0]); err != nil {
			return err
		}
		out.Successf("verification code sent")
		return nil

	case "verify":
		if len(args) < 2 {
			return fmt.Errorf("verify: phone and code required")
		}
		if err := a.Auth.VerifyWhatsApp(ctx, args[0], args[1]); err != nil {
			return err
		}
		out.Successf("signed in")
		return nil

	case "whoami":
		user, err := a.Auth.UserInfo(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s <%s> %s\n", user.FirstName, user.LastName, user.Email, user.Phone)
		return nil

	case "logout":
		a.Logout()
		out.Successf("signed out")
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runCart(ctx context.Context, a *app.Application, args []string) error {
	if len(args) < 1 {
		args = []string{"ls"}
	}

	switch args[0] {
	case "ls":
		printCart(a)
		return nil

	case "add":
		if len(args) < 2 {
			return fmt.Errorf("cart add: product slug required")
		}
		qty := 1
		if len(args) >= 3 {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("cart add: bad quantity %q", args[2])
			}
			qty = n
		}

		p, err := a.Catalog.ProductBySlug(ctx, args[1])
		if err != nil {
			return err
		}
		a.Cart.AddItem(ctx, cartAddInput(p, qty))
		printCart(a)
		return nil

	case "set":
		if len(args) < 3 {
			return fmt.Errorf("cart set: product id and quantity required")
		}
		qty, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("cart set: bad quantity %q", args[2])
		}
		a.Cart.UpdateQuantity(ctx, args[1], qty)
		printCart(a)
		return nil

	case "rm":
		if len(args) < 2 {
			return fmt.Errorf("cart rm: product id required")
		}
		a.Cart.RemoveItem(ctx, args[1])
		printCart(a)
		return nil

	case "clear":
		a.Cart.Clear(ctx)
		printCart(a)
		return nil

	default:
		return fmt.Errorf("unknown cart command %q", args[0])
	}
}

func cartAddInput(p catalog.Product, qty int) cart.AddInput {
	return cart.AddInput{
		ProductID: p.ID,
		Quantity:  qty,
		Name:      p.Name,
		Image:     p.Image,
		Price:     p.EffectivePrice(),
	}
}

func printProducts(products []catalog.Product) {
	w := newTable()
	fmt.Fprintln(w, "SLUG\tNAME\tPRICE\tSTOCK")
	for _, p := range products {
		price := fmt.Sprintf("%.2f", p.EffectivePrice())
		if p.HasDiscount {
			price = fmt.Sprintf("%.2f (-%d%%)", p.SalePrice, p.DiscountPercent)
		}
		stock := "yes"
		if !p.InStock {
			stock = "no"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Slug, p.Name, price, stock)
	}
	w.Flush()
}

func printCart(a *app.Application) {
	cart := a.Cart.Local()
	w := newTable()
	fmt.Fprintln(w, "PRODUCT\tQTY\tPRICE\tNAME")
	for _, item := range cart.Items {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%s\n", item.ProductID, item.Quantity, item.Price, item.Name)
	}
	w.Flush()
	fmt.Printf("%d items, total %.2f\n", cart.Count, cart.Total)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}
